package fetch

import "testing"

func TestParseProbeOutput(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantTitle  string
		wantUsable bool
		wantErr    bool
	}{
		{
			name:       "Full document",
			input:      `{"id":"abc123","title":"Cat Video","duration":61.5,"uploader":"cats","formats":[{"format_id":"22","ext":"mp4","height":720}]}`,
			wantTitle:  "Cat Video",
			wantUsable: true,
		},
		{
			name:       "Empty output",
			input:      "",
			wantUsable: false,
		},
		{
			name:       "Empty object",
			input:      "{}",
			wantUsable: false,
		},
		{
			name:       "ID only still usable",
			input:      `{"id":"abc123"}`,
			wantUsable: true,
		},
		{
			name:    "Not JSON",
			input:   "<html>rate limited</html>",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			md, err := parseProbeOutput([]byte(tt.input))
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if md.Usable() != tt.wantUsable {
				t.Errorf("Usable() = %v, want %v", md.Usable(), tt.wantUsable)
			}
			if tt.wantTitle != "" && md.Title != tt.wantTitle {
				t.Errorf("Title = %q, want %q", md.Title, tt.wantTitle)
			}
		})
	}
}

func TestParseProbeOutputFormats(t *testing.T) {
	md, err := parseProbeOutput([]byte(`{"id":"x","title":"t","formats":[{"format_id":"18","ext":"mp4","width":640,"height":360,"tbr":500.2},{"format_id":"22","ext":"mp4","width":1280,"height":720}]}`))
	if err != nil {
		t.Fatal(err)
	}
	if len(md.Formats) != 2 {
		t.Fatalf("Formats = %d, want 2", len(md.Formats))
	}
	if md.Formats[1].Height != 720 {
		t.Errorf("Formats[1].Height = %d, want 720", md.Formats[1].Height)
	}
}

func TestExtractErrorLine(t *testing.T) {
	tests := []struct {
		name   string
		stderr string
		want   string
	}{
		{
			name:   "Single error line",
			stderr: "WARNING: something minor\nERROR: [instagram] Restricted Video: login required\n",
			want:   "[instagram] Restricted Video: login required",
		},
		{
			name:   "No error prefix falls back to whole output",
			stderr: "  network unreachable  ",
			want:   "network unreachable",
		},
		{
			name:   "Empty stderr",
			stderr: "",
			want:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractErrorLine(tt.stderr); got != tt.want {
				t.Errorf("extractErrorLine(%q) = %q, want %q", tt.stderr, got, tt.want)
			}
		})
	}
}

func TestAppendCommonArgs(t *testing.T) {
	args := appendCommonArgs(nil, Options{Format: "best", CookieFile: "/tmp/c.txt"})
	want := []string{"-f", "best", "--cookies", "/tmp/c.txt"}
	if len(args) != len(want) {
		t.Fatalf("args = %v, want %v", args, want)
	}
	for i := range want {
		if args[i] != want[i] {
			t.Errorf("args[%d] = %q, want %q", i, args[i], want[i])
		}
	}

	if got := appendCommonArgs(nil, Options{}); len(got) != 0 {
		t.Errorf("empty options should add no args, got %v", got)
	}
}
