package validate

import "testing"

func TestPlaylistURL(t *testing.T) {
	valid := []string{
		"https://www.youtube.com/playlist?list=PLabc123",
		"https://youtube.com/watch?v=dQw4w9WgXcQ&list=PLabc",
		"https://m.youtube.com/watch?v=dQw4w9WgXcQ",
		"https://music.youtube.com/playlist?list=OLAK5uy",
		"https://youtu.be/dQw4w9WgXcQ",
		"  https://www.youtube.com/playlist?list=PLabc123  ",
	}
	for _, raw := range valid {
		if err := PlaylistURL(raw); err != nil {
			t.Fatalf("expected %q to be valid, got %v", raw, err)
		}
	}

	invalid := []string{
		"",
		"http://www.youtube.com/playlist?list=PLabc",
		"https://vimeo.com/channels/staffpicks",
		"https://notyoutube.com/playlist?list=PL",
		"https://www.youtube.com/channel/UC123",
		"https://youtu.be/",
		"://bad",
	}
	for _, raw := range invalid {
		if err := PlaylistURL(raw); err == nil {
			t.Fatalf("expected %q to be rejected", raw)
		}
	}
}

func TestEndpointAndPublicURL(t *testing.T) {
	if err := Endpoint("https://acct.r2.cloudflarestorage.com"); err != nil {
		t.Fatalf("expected endpoint valid, got %v", err)
	}
	if err := Endpoint("http://acct.r2.cloudflarestorage.com"); err == nil {
		t.Fatal("expected plain http endpoint rejected")
	}
	if err := Endpoint("https://host?x=1"); err == nil {
		t.Fatal("expected query rejected")
	}
	if err := PublicURL("https://pub-123.r2.dev"); err != nil {
		t.Fatalf("expected public URL valid, got %v", err)
	}
	if err := PublicURL("https://cdn.example.com/podcasts"); err != nil {
		t.Fatalf("expected custom domain with path valid, got %v", err)
	}
	if err := PublicURL("pub-123.r2.dev"); err == nil {
		t.Fatal("expected scheme-less URL rejected")
	}
}

func TestBucketName(t *testing.T) {
	for _, name := range []string{"abc", "my-podcasts", "a1-b2-c3"} {
		if err := BucketName(name); err != nil {
			t.Fatalf("expected %q valid, got %v", name, err)
		}
	}
	for _, name := range []string{"ab", "-abc", "abc-", "ABC", "my_bucket", "a..b", string(make([]byte, 64))} {
		if err := BucketName(name); err == nil {
			t.Fatalf("expected %q rejected", name)
		}
	}
}

func TestRequired(t *testing.T) {
	if err := Required("  "); err == nil {
		t.Fatal("expected blank rejected")
	}
	if err := Required("key"); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
}
