/*
 * Copyright 2026 The termatlas Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package sysinfo collects the human-readable device metadata labels a
// terminal reports into the registry. Every label degrades independently to
// "unknown"; metadata collection never blocks joining.
package sysinfo

import (
	"context"
	"fmt"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
)

const unknownLabel = "unknown"

// Labels are the static metadata fields of a terminal record.
type Labels struct {
	Platform string
	Model    string
	CPU      string
	Memory   string
}

var (
	hostInfo      = host.InfoWithContext
	cpuInfo       = cpu.InfoWithContext
	virtualMemory = mem.VirtualMemoryWithContext
)

// Collect gathers the device labels once at startup.
func Collect(ctx context.Context) Labels {
	labels := Labels{
		Platform: unknownLabel,
		Model:    unknownLabel,
		CPU:      unknownLabel,
		Memory:   unknownLabel,
	}

	if info, err := hostInfo(ctx); err == nil {
		labels.Platform = fmt.Sprintf("%s %s (%s)", info.Platform, info.PlatformVersion, info.KernelArch)

		if info.Hostname != "" {
			labels.Model = info.Hostname
		}
	}

	if stats, err := cpuInfo(ctx); err == nil && len(stats) > 0 {
		labels.CPU = fmt.Sprintf("%s x%d", stats[0].ModelName, len(stats))
	}

	if vm, err := virtualMemory(ctx); err == nil {
		labels.Memory = formatBytes(vm.Total)
	}

	return labels
}

// formatBytes converts bytes to a human readable label.
func formatBytes(bytes uint64) string {
	const unit = 1024

	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}

	div, exp := uint64(unit), 0

	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}

	return fmt.Sprintf("%.1f %ciB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
