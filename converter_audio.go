package mdconv

import (
	"fmt"
	"io"
	"strings"
)

// audioMetadataFields are the exiftool tags surfaced for audio files, in
// output order.
var audioMetadataFields = []string{
	"Title",
	"Artist",
	"Author",
	"Band",
	"Album",
	"Genre",
	"Track",
	"DateTimeOriginal",
	"CreateDate",
	"Duration",
	"NumChannels",
	"SampleRate",
	"AvgBytesPerSec",
	"BitsPerSample",
}

// AudioConverter handles audio files: exiftool metadata plus an optional
// transcript from the configured transcription backend.
type AudioConverter struct{}

// NewAudioConverter creates a new AudioConverter.
func NewAudioConverter() *AudioConverter {
	return &AudioConverter{}
}

func (c *AudioConverter) Accepts(reader io.ReadSeeker, info StreamInfo, opts *ConversionOptions) (bool, error) {
	switch info.Extension {
	case ".wav", ".mp3", ".m4a", ".mp4":
		return true, nil
	}
	mime := strings.ToLower(info.MIMEType)
	return strings.HasPrefix(mime, "audio/"), nil
}

func (c *AudioConverter) Convert(reader io.ReadSeeker, info StreamInfo, opts *ConversionOptions) (*DocumentConverterResult, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read audio: %w", err)
	}

	var lines []string

	if opts != nil && opts.ExifToolPath != "" {
		meta, err := exifToolMetadata(opts.ExifToolPath, data, info.Extension)
		if err == nil {
			writeMetadataFields(&lines, meta, audioMetadataFields)
		}
	}

	if opts != nil && opts.Transcriber != nil {
		mime := info.MIMEType
		if mime == "" {
			mime = mimeForExtension(info.Extension)
		}
		transcript, err := opts.Transcriber.Transcribe(data, mime)
		if err != nil {
			return nil, fmt.Errorf("transcribe audio: %w", err)
		}
		if strings.TrimSpace(transcript) == "" {
			transcript = "[No speech detected]"
		}
		lines = append(lines, "", "### Audio Transcript:", transcript)
	}

	if len(lines) == 0 {
		return nil, &MissingDependencyError{
			Converter:  "audio",
			Dependency: "exiftool or a transcription backend",
		}
	}

	return &DocumentConverterResult{
		Markdown: strings.Join(lines, "\n"),
	}, nil
}
