package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

type jsoncConfig struct {
	ClientID       *string        `json:"client_id"`
	PollIntervalMS *int           `json:"poll_interval_ms"`
	Activity       *jsoncActivity `json:"activity"`
	Player         *jsoncPlayer   `json:"player"`
}

type jsoncActivity struct {
	Name       *string `json:"name"`
	Type       *int    `json:"type"`
	LargeImage *string `json:"large_image"`
}

type jsoncPlayer struct {
	Backend *string   `json:"backend"`
	Command *string   `json:"command"`
	MPD     *jsoncMPD `json:"mpd"`
}

type jsoncMPD struct {
	Network  *string `json:"network"`
	Address  *string `json:"address"`
	Password *string `json:"password"`
}

func parseJSONC(content string, base Config) (Config, []Warning, error) {
	normalized, err := normalizeJSONC(content)
	if err != nil {
		return Config{}, nil, err
	}

	decoder := json.NewDecoder(strings.NewReader(normalized))
	decoder.DisallowUnknownFields()

	var payload jsoncConfig
	if err := decoder.Decode(&payload); err != nil {
		return Config{}, nil, wrapJSONDecodeError(normalized, err)
	}
	if err := ensureSingleJSONValue(decoder); err != nil {
		return Config{}, nil, wrapJSONDecodeError(normalized, err)
	}

	cfg := base
	if err := payload.applyTo(&cfg); err != nil {
		return Config{}, nil, err
	}

	warnings, err := Validate(cfg)
	if err != nil {
		return Config{}, nil, err
	}
	return cfg, warnings, nil
}

func (payload jsoncConfig) applyTo(cfg *Config) error {
	if payload.ClientID != nil {
		cfg.ClientID = strings.TrimSpace(*payload.ClientID)
	}
	if payload.PollIntervalMS != nil {
		cfg.PollInterval = time.Duration(*payload.PollIntervalMS) * time.Millisecond
	}

	if a := payload.Activity; a != nil {
		if a.Name != nil {
			cfg.Activity.Name = strings.TrimSpace(*a.Name)
		}
		if a.Type != nil {
			cfg.Activity.Type = *a.Type
		}
		if a.LargeImage != nil {
			cfg.Activity.LargeImage = strings.TrimSpace(*a.LargeImage)
		}
	}

	if p := payload.Player; p != nil {
		if p.Backend != nil {
			cfg.Player.Backend = strings.ToLower(strings.TrimSpace(*p.Backend))
		}
		if p.Command != nil {
			raw := *p.Command
			argv, err := parseArgv(raw)
			if err != nil {
				return fmt.Errorf("invalid player.command: %w", err)
			}
			cfg.Player.Command = CommandConfig{Raw: raw, Argv: argv}
		}
		if m := p.MPD; m != nil {
			if m.Network != nil {
				cfg.Player.MPD.Network = strings.TrimSpace(*m.Network)
			}
			if m.Address != nil {
				cfg.Player.MPD.Address = strings.TrimSpace(*m.Address)
			}
			if m.Password != nil {
				cfg.Player.MPD.Password = *m.Password
			}
		}
	}

	return nil
}

// normalizeJSONC blanks out comments and drops trailing commas, preserving offsets
// for everything else so decode errors still point at the right line.
func normalizeJSONC(content string) (string, error) {
	src := []byte(content)
	out := make([]byte, 0, len(src))

	inString := false
	for i := 0; i < len(src); i++ {
		ch := src[i]

		if inString {
			out = append(out, ch)
			switch ch {
			case '\\':
				if i+1 < len(src) {
					i++
					out = append(out, src[i])
				}
			case '"':
				inString = false
			}
			continue
		}

		switch {
		case ch == '"':
			inString = true
			out = append(out, ch)
		case ch == '/' && i+1 < len(src) && src[i+1] == '/':
			for i < len(src) && src[i] != '\n' && src[i] != '\r' {
				out = append(out, ' ')
				i++
			}
			i--
		case ch == '/' && i+1 < len(src) && src[i+1] == '*':
			end := strings.Index(content[i+2:], "*/")
			if end < 0 {
				return "", errors.New("unterminated block comment in JSONC")
			}
			for _, c := range src[i : i+2+end+2] {
				out = append(out, blankPreservingLines(c))
			}
			i += 2 + end + 1
		case ch == ',' && closesAfterWhitespace(src, i+1):
			out = append(out, ' ')
		default:
			out = append(out, ch)
		}
	}

	return string(out), nil
}

// closesAfterWhitespace reports whether the next significant byte from i closes
// an object or array. Comments count as whitespace.
func closesAfterWhitespace(src []byte, i int) bool {
	for i < len(src) {
		switch {
		case isJSONWhitespace(src[i]):
			i++
		case src[i] == '/' && i+1 < len(src) && src[i+1] == '/':
			for i < len(src) && src[i] != '\n' {
				i++
			}
		case src[i] == '/' && i+1 < len(src) && src[i+1] == '*':
			end := strings.Index(string(src[i+2:]), "*/")
			if end < 0 {
				return false
			}
			i += 2 + end + 2
		default:
			return src[i] == '}' || src[i] == ']'
		}
	}
	return false
}

func blankPreservingLines(ch byte) byte {
	if ch == '\n' || ch == '\r' || ch == '\t' {
		return ch
	}
	return ' '
}

func isJSONWhitespace(ch byte) bool {
	switch ch {
	case ' ', '\n', '\r', '\t':
		return true
	default:
		return false
	}
}

func ensureSingleJSONValue(decoder *json.Decoder) error {
	var extra struct{}
	err := decoder.Decode(&extra)
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err == nil {
		return fmt.Errorf("multiple JSON values are not allowed")
	}
	return err
}

func wrapJSONDecodeError(content string, err error) error {
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		line, col := offsetToLineCol(content, syntaxErr.Offset)
		return fmt.Errorf("line %d column %d: %w", line, col, err)
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		line, col := offsetToLineCol(content, typeErr.Offset)
		return fmt.Errorf("line %d column %d: %w", line, col, err)
	}

	return err
}

func offsetToLineCol(content string, offset int64) (int, int) {
	if offset <= 0 {
		return 1, 1
	}

	limit := min(int(offset), len(content))
	line, col := 1, 1
	for i := 0; i < limit-1; i++ {
		if content[i] == '\n' {
			line++
			col = 1
			continue
		}
		col++
	}
	return line, col
}
