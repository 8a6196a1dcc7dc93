package cache

import "testing"

func TestStorageKey(t *testing.T) {
	tests := []struct {
		name      string
		prefix    string
		cacheName string
		key       string
		want      string
	}{
		{
			name:      "all parts",
			prefix:    "restext",
			cacheName: "default",
			key:       "5d41402abc4b2a76b9719d911017c592",
			want:      "restext:default:5d41402abc4b2a76b9719d911017c592",
		},
		{
			name:   "no cache name",
			prefix: "restext:default",
			key:    "abc",
			want:   "restext:default:abc",
		},
		{
			name:      "prefix only",
			prefix:    "restext",
			cacheName: "redis",
			want:      "restext:redis",
		},
		{
			name:   "stray separators",
			prefix: "restext:",
			key:    ":abc",
			want:   "restext:abc",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StorageKey(tt.prefix, tt.cacheName, tt.key); got != tt.want {
				t.Errorf("StorageKey() = %q, want %q", got, tt.want)
			}
		})
	}
}
