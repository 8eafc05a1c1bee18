package audio

import (
	"github.com/bogem/id3v2"
)

// TagEditAction defines how to handle individual ID3 tags.
type TagEditAction int

const (
	// TagEmpty clears the tag value.
	TagEmpty TagEditAction = iota

	// TagModify writes the value taken from the source metadata.
	TagModify

	// TagDoNotModify leaves the existing tag value unchanged.
	TagDoNotModify
)

// TagConfig holds tagging configuration for each ID3 field.
type TagConfig struct {
	// ModifyTags is a master switch. If false, no text frames are touched.
	ModifyTags bool

	// Artist controls the TPE1 (Lead artist) frame.
	Artist TagEditAction

	// TrackTitle controls the TIT2 (Title) frame.
	TrackTitle TagEditAction

	// Date controls the TDRC (Recording time) frame.
	Date TagEditAction

	// Comments controls the COMM (Comments) frame.
	Comments TagEditAction
}

// DefaultTagConfig writes artist, title and date, and records the source
// URL as a comment.
func DefaultTagConfig() *TagConfig {
	return &TagConfig{
		ModifyTags: true,
		Artist:     TagModify,
		TrackTitle: TagModify,
		Date:       TagModify,
		Comments:   TagModify,
	}
}

// Tags are the values written into a file.
type Tags struct {
	Title   string
	Artist  string
	Date    string // YYYY-MM-DD or YYYY
	Comment string
}

// Tagger writes ID3v2 tags to MP3 files.
//
//	tagger := NewTagger(DefaultTagConfig())
//	err := tagger.SaveTags(path, Tags{Title: "Song", Artist: "Band"}, jpegBytes)
type Tagger struct {
	config *TagConfig
}

// NewTagger creates a new Tagger. A nil config uses DefaultTagConfig().
func NewTagger(config *TagConfig) *Tagger {
	if config == nil {
		config = DefaultTagConfig()
	}
	return &Tagger{config: config}
}

// SaveTags writes tags and, when artwork is non-nil, a front cover picture to
// the MP3 at path. Existing frames the config leaves alone are kept.
func (t *Tagger) SaveTags(path string, tags Tags, artwork []byte) error {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return err
	}
	defer tag.Close()

	tag.SetVersion(4)
	tag.SetDefaultEncoding(id3v2.EncodingUTF8)

	if t.config.ModifyTags {
		t.updateStringTags(tag, tags)
	}

	if artwork != nil {
		t.updateArtwork(tag, artwork)
	}

	return tag.Save()
}

func (t *Tagger) updateStringTags(tag *id3v2.Tag, tags Tags) {
	switch t.config.Artist {
	case TagEmpty:
		tag.SetArtist("")
	case TagModify:
		if tags.Artist != "" {
			tag.SetArtist(tags.Artist)
		}
	}

	switch t.config.TrackTitle {
	case TagEmpty:
		tag.SetTitle("")
	case TagModify:
		if tags.Title != "" {
			tag.SetTitle(tags.Title)
		}
	}

	switch t.config.Date {
	case TagEmpty:
		tag.DeleteFrames("TDRC")
	case TagModify:
		if tags.Date != "" {
			tag.AddTextFrame("TDRC", id3v2.EncodingUTF8, tags.Date)
		}
	}

	commentsID := tag.CommonID("Comments")
	switch t.config.Comments {
	case TagEmpty:
		tag.DeleteFrames(commentsID)
	case TagModify:
		if tags.Comment != "" {
			tag.DeleteFrames(commentsID)
			tag.AddCommentFrame(id3v2.CommentFrame{
				Encoding:    id3v2.EncodingUTF8,
				Language:    "eng",
				Description: "source",
				Text:        tags.Comment,
			})
		}
	}
}

// updateArtwork replaces any attached pictures with a JPEG front cover.
func (t *Tagger) updateArtwork(tag *id3v2.Tag, artwork []byte) {
	tag.DeleteFrames(tag.CommonID("Attached picture"))

	tag.AddAttachedPicture(id3v2.PictureFrame{
		Encoding:    id3v2.EncodingUTF8,
		MimeType:    "image/jpeg",
		PictureType: id3v2.PTFrontCover,
		Description: "Cover",
		Picture:     artwork,
	})
}
