package tags

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bogem/id3v2/v2"
	"github.com/go-flac/flacvorbis"
	flac "github.com/go-flac/go-flac"
)

// ErrUnsupported reports a container without a supported tag reader.
var ErrUnsupported = errors.New("unsupported tag format")

const discNumberField = "DISCNUMBER"

// Tags holds the subset of embedded metadata used for placement.
type Tags struct {
	Artist string
	Album  string
	Title  string
	Track  string
	Disc   string
}

// Empty reports whether no usable field was found.
func (t Tags) Empty() bool {
	return t.Artist == "" && t.Album == "" && t.Title == "" && t.Track == ""
}

// Read dispatches on the file extension.
func Read(path string) (Tags, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		return readID3(path)
	case ".flac":
		return readFLAC(path)
	default:
		return Tags{}, ErrUnsupported
	}
}

func readID3(path string) (Tags, error) {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return Tags{}, fmt.Errorf("read id3 tags: %w", err)
	}
	defer tag.Close()

	return Tags{
		Artist: clean(tag.Artist()),
		Album:  clean(tag.Album()),
		Title:  clean(tag.Title()),
		Track:  position(tag.GetTextFrame(tag.CommonID("Track number/Position in set")).Text),
		Disc:   position(tag.GetTextFrame(tag.CommonID("Part of a set")).Text),
	}, nil
}

func readFLAC(path string) (Tags, error) {
	file, err := os.Open(path)
	if err != nil {
		return Tags{}, fmt.Errorf("open flac: %w", err)
	}
	defer file.Close()

	parsed, err := flac.ParseMetadata(file)
	if err != nil {
		return Tags{}, fmt.Errorf("read flac metadata: %w", err)
	}
	for _, block := range parsed.Meta {
		if block == nil || block.Type != flac.VorbisComment {
			continue
		}
		comments, err := flacvorbis.ParseFromMetaDataBlock(*block)
		if err != nil {
			return Tags{}, fmt.Errorf("parse vorbis comments: %w", err)
		}
		return Tags{
			Artist: first(comments, flacvorbis.FIELD_ARTIST),
			Album:  first(comments, flacvorbis.FIELD_ALBUM),
			Title:  first(comments, flacvorbis.FIELD_TITLE),
			Track:  position(first(comments, flacvorbis.FIELD_TRACKNUMBER)),
			Disc:   position(first(comments, discNumberField)),
		}, nil
	}
	return Tags{}, nil
}

func first(comments *flacvorbis.MetaDataBlockVorbisComment, key string) string {
	values, err := comments.Get(key)
	if err != nil {
		return ""
	}
	for _, value := range values {
		if value = clean(value); value != "" {
			return value
		}
	}
	return ""
}

// position reduces "3/12" style values to "3".
func position(value string) string {
	value = clean(value)
	if idx := strings.IndexByte(value, '/'); idx >= 0 {
		value = strings.TrimSpace(value[:idx])
	}
	return strings.TrimLeft(value, "0")
}

func clean(value string) string {
	return strings.TrimSpace(strings.Trim(value, "\x00"))
}
