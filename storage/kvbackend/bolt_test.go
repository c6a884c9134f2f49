package kvbackend

import "testing"

func Test_splitKey(t *testing.T) {
	tests := []struct {
		input      string
		wantBucket string
		wantKey    string
		wantErr    bool
	}{
		{input: "", wantErr: true},
		{input: "/runs", wantErr: true},
		{input: "runs", wantErr: true},
		{input: "runs/", wantErr: true},
		{input: "/runs/nest", wantErr: true},
		{input: "runs/nest/", wantErr: true},
		{input: "runs/nest", wantBucket: "runs", wantKey: "nest"},
		{input: "artifacts/nest/system.conf", wantBucket: "artifacts/nest", wantKey: "system.conf"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			bucket, key, err := splitKey(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("splitKey() err = %v, wantErr %t", err, tt.wantErr)
			}
			if string(bucket) != tt.wantBucket {
				t.Errorf("bucket = %q, want %q", bucket, tt.wantBucket)
			}
			if string(key) != tt.wantKey {
				t.Errorf("key = %q, want %q", key, tt.wantKey)
			}
		})
	}
}
