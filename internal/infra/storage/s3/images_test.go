package s3

import (
	"context"
	"errors"
	"testing"

	"github.com/minio/minio-go/v7"

	"bookingengine/internal/app/ports"
)

type fakeBucket struct {
	keys   []string
	err    error
	exists bool
}

func (f fakeBucket) ListObjects(_ context.Context, _ string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo {
	ch := make(chan minio.ObjectInfo, len(f.keys)+1)
	for _, k := range f.keys {
		if len(k) >= len(opts.Prefix) && k[:len(opts.Prefix)] == opts.Prefix {
			ch <- minio.ObjectInfo{Key: k}
		}
	}
	if f.err != nil {
		ch <- minio.ObjectInfo{Err: f.err}
	}
	close(ch)
	return ch
}

func (f fakeBucket) BucketExists(context.Context, string) (bool, error) {
	return f.exists, f.err
}

func TestMainImage(t *testing.T) {
	cases := []struct {
		name string
		keys []string
		want string
	}{
		{"main wins", []string{"accommodations/a1/a.jpg", "accommodations/a1/main.png"}, "http://cdn/photos/accommodations/a1/main.png"},
		{"first by key", []string{"accommodations/a1/b.jpg", "accommodations/a1/a.webp"}, "http://cdn/photos/accommodations/a1/a.webp"},
		{"non images skipped", []string{"accommodations/a1/notes.txt", "accommodations/a1/z.JPG"}, "http://cdn/photos/accommodations/a1/z.JPG"},
		{"other accommodation ignored", []string{"accommodations/a10/a.jpg", "accommodations/a1/x.jpeg"}, "http://cdn/photos/accommodations/a1/x.jpeg"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := &Images{bucket: "photos", publicBaseURL: "http://cdn", client: fakeBucket{keys: tc.keys}}
			got, err := s.MainImage(context.Background(), "a1")
			if err != nil || got != tc.want {
				t.Fatalf("MainImage = %q, %v; want %q", got, err, tc.want)
			}
		})
	}
}

func TestMainImageMissingAndErrors(t *testing.T) {
	s := &Images{bucket: "photos", client: fakeBucket{}}
	if _, err := s.MainImage(context.Background(), "a1"); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("err = %v", err)
	}
	boom := errors.New("access denied")
	s.client = fakeBucket{err: boom}
	if _, err := s.MainImage(context.Background(), "a1"); !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
	if err := s.Check(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("check err = %v", err)
	}
}

func TestNewImagesValidates(t *testing.T) {
	if _, err := NewImages("", false, "", "", "b", "", nil); err == nil {
		t.Fatal("empty endpoint accepted")
	}
	s, err := NewImages("http://minio:9000", false, "k", "s", "photos", "", nil)
	if err != nil {
		t.Fatal(err)
	}
	if s.objectURL("/x.jpg") != "http://minio:9000/photos/x.jpg" {
		t.Fatalf("url = %s", s.objectURL("/x.jpg"))
	}
	if parseEndpoint("https://s3.example.com") != "s3.example.com" {
		t.Fatal("endpoint scheme not stripped")
	}
}
