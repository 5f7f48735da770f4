package script

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/skip2/go-qrcode"
)

// ErrInvalidScript is returned by Decode for input that is not a script.
var ErrInvalidScript = errors.New("invalid script file")

// Encode writes s as indented JSON without its replication key.
func Encode(s Script) ([]byte, error) {
	s = s.Clone()
	s.RemoteID = ""
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode script %q: %w", s.ID, err)
	}
	return b, nil
}

// Decode parses a script produced by Encode into a fresh custom script. The
// id is regenerated so an import never collides with the exported script.
func Decode(data []byte, now time.Time) (Script, error) {
	var s Script
	if err := json.Unmarshal(data, &s); err != nil {
		return Script{}, fmt.Errorf("%w: %v", ErrInvalidScript, err)
	}
	s.Title = strings.TrimSpace(s.Title)
	if s.Title == "" {
		return Script{}, fmt.Errorf("%w: missing title", ErrInvalidScript)
	}
	if len(s.Roles) == 0 {
		return Script{}, fmt.Errorf("%w: no roles", ErrInvalidScript)
	}
	s.ID = fmt.Sprintf("imported_%d", now.UnixMilli())
	s.Type = TypeCustom
	s.RemoteID = ""
	seen := make(map[string]bool, len(s.Roles))
	for i := range s.Roles {
		r := &s.Roles[i]
		if r.ID == "" || seen[r.ID] {
			r.ID = fmt.Sprintf("role_%d_%d", now.UnixMilli(), i)
		}
		seen[r.ID] = true
		if !r.Team.Valid() {
			r.Team = TeamTownsfolk
		}
	}
	return s, nil
}

// QR encodes s as a PNG QR code of the given pixel size.
func QR(s Script, size int) ([]byte, error) {
	q, err := qrCode(s)
	if err != nil {
		return nil, err
	}
	return q.PNG(size)
}

// QRText renders s as a terminal QR code built from half-block characters.
func QRText(s Script) (string, error) {
	q, err := qrCode(s)
	if err != nil {
		return "", err
	}
	return q.ToSmallString(false), nil
}

func qrCode(s Script) (*qrcode.QRCode, error) {
	b, err := json.Marshal(compact(s))
	if err != nil {
		return nil, fmt.Errorf("encode script %q: %w", s.ID, err)
	}
	q, err := qrcode.New(string(b), qrcode.Low)
	if err != nil {
		return nil, fmt.Errorf("qr for %q (%d bytes): %w", s.Title, len(b), err)
	}
	return q, nil
}

// compact drops abilities so a full script fits in one QR symbol. Decode
// accepts the result.
func compact(s Script) Script {
	s = s.Clone()
	s.RemoteID = ""
	s.Description = ""
	for i := range s.Roles {
		s.Roles[i].Ability = ""
	}
	return s
}
