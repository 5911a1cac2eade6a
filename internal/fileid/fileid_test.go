package fileid

import "testing"

func TestImageKey(t *testing.T) {
	k1 := ImageKey("/photos/cat.jpg")
	k2 := ImageKey("/photos/cat.jpg")
	if k1 != k2 {
		t.Errorf("same path should give same key: %q vs %q", k1, k2)
	}
	if len(k1) <= len(prefix) {
		t.Errorf("key too short: %q", k1)
	}
	if k1[:len(prefix)] != prefix {
		t.Errorf("key should have prefix %q: got %q", prefix, k1)
	}
}

func TestImageKey_differentPaths(t *testing.T) {
	if ImageKey("/photos/cat.jpg") == ImageKey("/photos/dog.jpg") {
		t.Error("different paths should give different keys")
	}
}

func TestImageKey_normalized(t *testing.T) {
	k1 := ImageKey("/photos/cat.jpg")
	k2 := ImageKey("/photos/./cat.jpg")
	k3 := ImageKey("/photos//cat.jpg")
	if k1 != k2 || k1 != k3 {
		t.Errorf("equivalent paths should normalize to the same key: %q %q %q", k1, k2, k3)
	}
}
