package frame_test

import (
	"errors"
	"testing"
	"time"

	"picframe/internal/frame"
)

func TestIsAllowedFile(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"cat.png", true},
		{"cat.PNG", true},
		{"photo.jpeg", true},
		{"photo.JpG", true},
		{"anim.gif", true},
		{"scan.bmp", true},
		{"archive.tar.png", true},
		{"image.png.exe", false},
		{"notes.txt", false},
		{"png", false},
		{"noext", false},
		{"trailingdot.", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := frame.IsAllowedFile(tt.name); got != tt.want {
				t.Errorf("IsAllowedFile(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestCheckFilename(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"plain", "cat.png", false},
		{"dotfile", ".hidden.png", false},
		{"empty", "", true},
		{"dot", ".", true},
		{"dotdot", "..", true},
		{"traversal", "../etc/passwd", true},
		{"slash", "a/b.png", true},
		{"backslash", `a\b.png`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := frame.CheckFilename(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("CheckFilename(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, frame.ErrValidation) {
				t.Errorf("CheckFilename(%q) error = %v, want ErrValidation", tt.input, err)
			}
		})
	}
}

func TestSecureFilename(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"cat.png", "cat.png"},
		{"My Photo.jpg", "My_Photo.jpg"},
		{"  lots   of\tspace .png", "lots_of_space_.png"},
		{"../../etc/passwd", "etc_passwd"},
		{`C:\Users\me\pic.png`, "C_Users_me_pic.png"},
		{"café.png", "cafe.png"},
		{"naïve résumé.gif", "naive_resume.gif"},
		{"日本.png", "png"},
		{"...hidden.png", "hidden.png"},
		{"weird$#@!name.bmp", "weirdname.bmp"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := frame.SecureFilename(tt.input); got != tt.want {
				t.Errorf("SecureFilename(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestUploadFilename(t *testing.T) {
	now := time.Date(2024, 3, 9, 14, 5, 7, 0, time.Local)

	tests := []struct {
		name     string
		original string
		want     string
		wantErr  bool
	}{
		{"simple", "cat.png", "cat_20240309_140507.png", false},
		{"spaces", "my cat.JPG", "my_cat_20240309_140507.JPG", false},
		{"traversal stripped", "../../cat.gif", "cat_20240309_140507.gif", false},
		{"empty", "", "", true},
		{"disallowed extension", "script.sh", "", true},
		{"no usable stem", "日本.png", "", true},
		{"extension only", ".png", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := frame.UploadFilename(tt.original, now)
			if (err != nil) != tt.wantErr {
				t.Fatalf("UploadFilename(%q) error = %v, wantErr %v", tt.original, err, tt.wantErr)
			}
			if err != nil {
				if !errors.Is(err, frame.ErrValidation) {
					t.Errorf("UploadFilename(%q) error = %v, want ErrValidation", tt.original, err)
				}
				return
			}
			if got != tt.want {
				t.Errorf("UploadFilename(%q) = %q, want %q", tt.original, got, tt.want)
			}
		})
	}
}
