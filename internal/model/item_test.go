package model

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestState_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to State
		want     bool
	}{
		{StatePending, StateActive, true},
		{StatePending, StateCompleted, false},
		{StatePending, StateFailed, false},
		{StatePending, StatePending, false},
		{StateActive, StateCompleted, true},
		{StateActive, StateFailed, true},
		{StateActive, StatePending, false},
		{StateActive, StateActive, false},
		{StateCompleted, StateActive, false},
		{StateCompleted, StateFailed, false},
		{StateFailed, StateCompleted, false},
		{StateFailed, StatePending, false},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s->%s", tt.from, tt.to), func(t *testing.T) {
			if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
				t.Errorf("CanTransitionTo() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestState_IsTerminal(t *testing.T) {
	tests := []struct {
		state State
		want  bool
	}{
		{StatePending, false},
		{StateActive, false},
		{StateCompleted, true},
		{StateFailed, true},
	}

	for _, tt := range tests {
		if got := tt.state.IsTerminal(); got != tt.want {
			t.Errorf("State(%s).IsTerminal() = %v, want %v", tt.state, got, tt.want)
		}
	}
}

func TestNewWorkItem(t *testing.T) {
	item := NewWorkItem("id-1", 7, "https://youtu.be/abc")

	if item.State != StatePending {
		t.Errorf("State = %s, want pending", item.State)
	}
	if item.Worker != -1 {
		t.Errorf("Worker = %d, want -1", item.Worker)
	}
	if item.Seq != 7 || item.ID != "id-1" {
		t.Errorf("unexpected identity: %+v", item)
	}
	if item.SubmittedAt.IsZero() {
		t.Error("SubmittedAt not set")
	}
	if item.Elapsed() != 0 {
		t.Errorf("Elapsed() = %v before start", item.Elapsed())
	}
}

func TestWorkItem_Title(t *testing.T) {
	tests := []struct {
		displayName string
		sourceRef   string
		want        string
	}{
		{"Song Title", "https://youtu.be/abc", "Song Title"},
		{"", "https://youtu.be/abc", "https://youtu.be/abc"},
	}

	for _, tt := range tests {
		item := WorkItem{DisplayName: tt.displayName, SourceRef: tt.sourceRef}
		if got := item.Title(); got != tt.want {
			t.Errorf("Title() = %q, want %q", got, tt.want)
		}
	}
}

func TestWorkItem_Elapsed(t *testing.T) {
	start := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	item := WorkItem{StartedAt: start, FinishedAt: start.Add(90 * time.Second)}

	if got := item.Elapsed(); got != 90*time.Second {
		t.Errorf("Elapsed() = %v, want 1m30s", got)
	}
}

func TestTargetFormat(t *testing.T) {
	if MP3At192.String() != "mp3@192k" {
		t.Errorf("String() = %q", MP3At192.String())
	}
	if MP3At192.Extension() != ".mp3" {
		t.Errorf("Extension() = %q", MP3At192.Extension())
	}
}

func TestKindOf(t *testing.T) {
	cause := errors.New("boom")
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"fetch", &FetchError{Kind: KindNotFound, Source: "x", Err: cause}, KindNotFound},
		{"transcode", &TranscodeError{Kind: KindToolMissing, Path: "x"}, KindToolMissing},
		{"internal", &InternalError{Kind: KindUnknownID, ID: "x"}, KindUnknownID},
		{"wrapped", fmt.Errorf("worker: %w", &FetchError{Kind: KindNetworkFailure}), KindNetworkFailure},
		{"plain", cause, ""},
		{"nil", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestErrorsUnwrap(t *testing.T) {
	cause := errors.New("exit status 1")
	err := &TranscodeError{Kind: KindConversionFailure, Path: "/tmp/a.webm", Err: cause}

	if !errors.Is(err, cause) {
		t.Error("errors.Is did not find the cause")
	}
	want := "transcode /tmp/a.webm: conversion_failure: exit status 1"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if !IsInternal(&InternalError{Kind: KindPanic}) || IsInternal(cause) {
		t.Error("IsInternal misclassified")
	}
}
