package mdconv

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
)

// exifToolMetadata shells out to exiftool for media metadata. The payload is
// staged in a temp file because exiftool keys some tags off the filename
// extension. Returns a flat tag→value map from exiftool's JSON output.
func exifToolMetadata(exifToolPath string, data []byte, ext string) (map[string]string, error) {
	tmp, err := os.CreateTemp("", "mdconv-*"+ext)
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	tmp.Close()

	out, err := exec.Command(exifToolPath, "-json", tmpPath).Output()
	if err != nil {
		return nil, fmt.Errorf("run exiftool: %w", err)
	}

	var records []map[string]any
	if err := json.Unmarshal(out, &records); err != nil {
		return nil, fmt.Errorf("parse exiftool output: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	meta := make(map[string]string, len(records[0]))
	for k, v := range records[0] {
		meta[k] = fmt.Sprint(v)
	}
	return meta, nil
}

// writeMetadataFields appends "Key: value" lines for each present field, in
// the given order.
func writeMetadataFields(md *[]string, meta map[string]string, fields []string) {
	for _, f := range fields {
		if v, ok := meta[f]; ok && v != "" {
			*md = append(*md, fmt.Sprintf("%s: %s", f, v))
		}
	}
}
