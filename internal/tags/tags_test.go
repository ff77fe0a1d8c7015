package tags_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/bogem/id3v2/v2"
	"github.com/go-flac/flacvorbis"
	flac "github.com/go-flac/go-flac"

	"mediasort/internal/tags"
)

func writeMP3(t *testing.T, path string, set func(*id3v2.Tag)) {
	t.Helper()
	tag := id3v2.NewEmptyTag()
	set(tag)
	file, err := os.Create(path)
	if err != nil {
		t.Fatalf("create mp3: %v", err)
	}
	defer file.Close()
	if _, err := tag.WriteTo(file); err != nil {
		t.Fatalf("write id3 tag: %v", err)
	}
	if _, err := file.Write([]byte{0xff, 0xfb, 0x90, 0x00}); err != nil {
		t.Fatalf("write audio stub: %v", err)
	}
}

func writeFLAC(t *testing.T, path string, comments map[string]string) {
	t.Helper()
	block := flacvorbis.New()
	for key, value := range comments {
		if err := block.Add(key, value); err != nil {
			t.Fatalf("add comment: %v", err)
		}
	}
	marshaled := block.Marshal()
	file := &flac.File{Meta: []*flac.MetaDataBlock{&marshaled}}
	if err := os.WriteFile(path, file.Marshal(), 0o644); err != nil {
		t.Fatalf("write flac: %v", err)
	}
}

func TestReadID3Tags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "song.mp3")
	writeMP3(t, path, func(tag *id3v2.Tag) {
		tag.SetArtist("Daft Punk")
		tag.SetAlbum("Discovery")
		tag.SetTitle("One More Time")
		tag.AddTextFrame(tag.CommonID("Track number/Position in set"), tag.DefaultEncoding(), "01/14")
		tag.AddTextFrame(tag.CommonID("Part of a set"), tag.DefaultEncoding(), "2/2")
	})

	got, err := tags.Read(path)
	if err != nil {
		t.Fatalf("Read returned error: %v", err)
	}
	want := tags.Tags{Artist: "Daft Punk", Album: "Discovery", Title: "One More Time", Track: "1", Disc: "2"}
	if got != want {
		t.Fatalf("unexpected tags: got %+v want %+v", got, want)
	}
}

func TestReadID3WithoutTrack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "single.mp3")
	writeMP3(t, path, func(tag *id3v2.Tag) {
		tag.SetTitle("Loose Track")
	})
	got, err := tags.Read(path)
	if err != nil {
		t.Fatalf("Read returned error: %v", err)
	}
	if got.Title != "Loose Track" || got.Artist != "" || got.Track != "" {
		t.Fatalf("unexpected tags: %+v", got)
	}
}

func TestReadFLACVorbisComments(t *testing.T) {
	path := filepath.Join(t.TempDir(), "track.flac")
	writeFLAC(t, path, map[string]string{
		flacvorbis.FIELD_ARTIST:      "Radiohead",
		flacvorbis.FIELD_ALBUM:       "OK Computer",
		flacvorbis.FIELD_TITLE:       "Airbag",
		flacvorbis.FIELD_TRACKNUMBER: "1",
		"DISCNUMBER":                 "1/1",
	})

	got, err := tags.Read(path)
	if err != nil {
		t.Fatalf("Read returned error: %v", err)
	}
	want := tags.Tags{Artist: "Radiohead", Album: "OK Computer", Title: "Airbag", Track: "1", Disc: "1"}
	if got != want {
		t.Fatalf("unexpected tags: got %+v want %+v", got, want)
	}
}

func TestReadFLACWithoutCommentsIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bare.flac")
	padding := &flac.MetaDataBlock{Type: flac.Padding, Data: make([]byte, 8)}
	file := &flac.File{Meta: []*flac.MetaDataBlock{padding}}
	if err := os.WriteFile(path, file.Marshal(), 0o644); err != nil {
		t.Fatalf("write flac: %v", err)
	}
	got, err := tags.Read(path)
	if err != nil {
		t.Fatalf("Read returned error: %v", err)
	}
	if !got.Empty() {
		t.Fatalf("expected empty tags, got %+v", got)
	}
}

func TestReadRejectsUnsupportedFormats(t *testing.T) {
	_, err := tags.Read("/music/track.wav")
	if !errors.Is(err, tags.ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
}

func TestReadReportsCorruptFLAC(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.flac")
	if err := os.WriteFile(path, []byte("not a flac"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := tags.Read(path); err == nil {
		t.Fatal("expected error for corrupt flac")
	}
}
