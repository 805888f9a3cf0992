// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"errors"
	"testing"
)

func TestNewDeviceFromNilProvider(t *testing.T) {
	if _, err := NewDeviceFromProvider(nil); !errors.Is(err, ErrUnavailable) {
		t.Errorf("NewDeviceFromProvider(nil) = %v, want ErrUnavailable", err)
	}
}

func TestNewDevice(t *testing.T) {
	dev, err := NewDevice()
	if err != nil {
		if !errors.Is(err, ErrUnavailable) {
			t.Fatalf("NewDevice error %v does not wrap ErrUnavailable", err)
		}
		if Available {
			t.Skipf("Skipping: no GPU device: %v", err)
		}
		return
	}
	defer dev.Close()
	if dev.Name() != "wgpu" {
		t.Errorf("Name() = %q, want wgpu", dev.Name())
	}
}
