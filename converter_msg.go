package mdconv

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/richardlehane/mscfb"
	"golang.org/x/text/encoding/unicode"
)

// MsgConverter handles Outlook .msg files. MSG is an OLE compound file whose
// MAPI properties live in streams named __substg1.0_<PPPP><TTTT>, where PPPP
// is the property id and TTTT the type (001F = UTF-16LE, 001E = 8-bit).
type MsgConverter struct{}

// NewMsgConverter creates a new MsgConverter.
func NewMsgConverter() *MsgConverter {
	return &MsgConverter{}
}

func (c *MsgConverter) Accepts(reader io.ReadSeeker, info StreamInfo, opts *ConversionOptions) (bool, error) {
	if info.Extension == ".msg" {
		return true, nil
	}
	mime := strings.ToLower(info.MIMEType)
	return strings.HasPrefix(mime, "application/vnd.ms-outlook"), nil
}

// MAPI property ids surfaced in the output.
const (
	propSubject     = "0037"
	propSenderName  = "0c1a"
	propSenderEmail = "0c1f"
	propDisplayTo   = "0e04"
	propDisplayCC   = "0e03"
	propBody        = "1000"
)

func (c *MsgConverter) Convert(reader io.ReadSeeker, info StreamInfo, opts *ConversionOptions) (*DocumentConverterResult, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read MSG: %w", err)
	}

	doc, err := mscfb.New(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open MSG compound file: %w", err)
	}

	props := map[string]string{}
	for entry, err := doc.Next(); err == nil; entry, err = doc.Next() {
		// Only top-level message properties; recipient and attachment
		// storages carry their own property streams.
		if len(entry.Path) > 0 {
			continue
		}
		name := entry.Name
		if !strings.HasPrefix(name, "__substg1.0_") {
			continue
		}
		tag := strings.ToLower(strings.TrimPrefix(name, "__substg1.0_"))
		if len(tag) < 8 {
			continue
		}
		propID, propType := tag[:4], tag[4:8]
		if _, seen := props[propID]; seen {
			continue
		}

		raw, err := io.ReadAll(entry)
		if err != nil {
			continue
		}

		var value string
		switch propType {
		case "001f":
			value = decodeUTF16LE(raw)
		case "001e":
			value = string(raw)
		default:
			continue
		}
		if value != "" {
			props[propID] = value
		}
	}

	subject := props[propSubject]
	sender := props[propSenderName]
	if email := props[propSenderEmail]; email != "" {
		if sender != "" && !strings.EqualFold(sender, email) {
			sender = fmt.Sprintf("%s <%s>", sender, email)
		} else {
			sender = email
		}
	}

	var md strings.Builder
	md.WriteString("# Email Message\n\n")
	if sender != "" {
		fmt.Fprintf(&md, "**From:** %s\n\n", sender)
	}
	if to := props[propDisplayTo]; to != "" {
		fmt.Fprintf(&md, "**To:** %s\n\n", to)
	}
	if cc := props[propDisplayCC]; cc != "" {
		fmt.Fprintf(&md, "**CC:** %s\n\n", cc)
	}
	if subject != "" {
		fmt.Fprintf(&md, "**Subject:** %s\n\n", subject)
	}
	if body := props[propBody]; body != "" {
		md.WriteString("## Content\n\n")
		md.WriteString(body)
		md.WriteString("\n")
	}

	return &DocumentConverterResult{
		Markdown: md.String(),
		Title:    subject,
	}, nil
}

// decodeUTF16LE converts a UTF-16LE byte stream to a trimmed UTF-8 string.
func decodeUTF16LE(raw []byte) string {
	dec := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder()
	out, err := dec.Bytes(raw)
	if err != nil {
		return ""
	}
	return strings.TrimRight(string(out), "\x00")
}
