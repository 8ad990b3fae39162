package bake

import (
	"os"
	"strings"
	"testing"

	"github.com/pkg/errors"
)

func TestError_Is(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind error
	}{
		{"import", ImportError("scene.gltf", errors.New("bad header")), ErrImport},
		{"argument", ArgumentError("no stem"), ErrInvalidArgument},
		{"io", ioError("write", "out.bin", os.ErrPermission), ErrIO},
		{"wrapped", errors.Wrapf(ioError("write", "a", nil), "bake %s", "x"), ErrIO},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, tt.kind) {
				t.Errorf("%v does not match %v", tt.err, tt.kind)
			}
			if errors.Is(tt.err, ErrMissingTexture) {
				t.Errorf("%v must not match ErrMissingTexture", tt.err)
			}
		})
	}
}

func TestError_UnwrapsCause(t *testing.T) {
	err := ioError("publish", "out.json", os.ErrPermission)
	if !errors.Is(err, os.ErrPermission) {
		t.Error("cause not reachable through errors.Is")
	}
	msg := err.Error()
	if !strings.Contains(msg, "publish") || !strings.Contains(msg, "out.json") {
		t.Errorf("message missing context: %s", msg)
	}
}
