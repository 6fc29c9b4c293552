// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpustate

import (
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
)

// NullDevice is a gpucontext.DeviceProvider without a GPU. It reports a
// fixed surface format so frames can be replayed headless.
type NullDevice struct {
	// Format is the reported surface format. The zero value reports
	// BGRA8Unorm, the common swapchain format.
	Format gputypes.TextureFormat
}

// Device returns nil for the null device.
func (NullDevice) Device() gpucontext.Device { return nil }

// Queue returns nil for the null device.
func (NullDevice) Queue() gpucontext.Queue { return nil }

// Adapter returns nil for the null device.
func (NullDevice) Adapter() gpucontext.Adapter { return nil }

// AdapterInfo reports an unknown adapter. The zero AdapterInfo would claim
// a discrete GPU.
func (NullDevice) AdapterInfo() gpucontext.AdapterInfo {
	return gpucontext.AdapterInfo{Name: "null", Type: gpucontext.AdapterTypeUnknown}
}

// SurfaceFormat returns the configured format.
func (d NullDevice) SurfaceFormat() gputypes.TextureFormat {
	if d.Format == gputypes.TextureFormatUndefined {
		return gputypes.TextureFormatBGRA8Unorm
	}
	return d.Format
}

var _ gpucontext.DeviceProvider = NullDevice{}
