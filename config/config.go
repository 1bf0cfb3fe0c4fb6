/*
 * Altair Relaxed - Machine description loader.
 *
 * Copyright 2024, Richard Cornwell
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

// Package config loads a TOML machine description: the set of
// processors to create (each from a boot-code file) and the physical
// memories to attach, handed to vm.Machine at startup (spec.md §6 is
// silent on configuration format; this is ambient CLI plumbing, not
// part of the core).
package config

import (
	"encoding/binary"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// ProcessorConfig describes one processor to create.
type ProcessorConfig struct {
	Name     string `toml:"name"`
	BootFile string `toml:"boot_file"`
}

// MemoryConfig describes one physical memory to attach.
type MemoryConfig struct {
	Name string `toml:"name"`
	Size uint64 `toml:"size"`
}

// MachineConfig is the top-level machine description.
type MachineConfig struct {
	Processor []ProcessorConfig `toml:"processor"`
	Memory    []MemoryConfig    `toml:"memory"`
}

// Load reads and parses a TOML machine description file.
func Load(path string) (*MachineConfig, error) {
	var cfg MachineConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	return &cfg, nil
}

// LoadBootCode reads a raw boot-code file as little-endian 32-bit
// words, the format Decode expects in ISRAM (spec.md §6).
func LoadBootCode(path string) ([]uint32, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load boot code %s: %w", path, err)
	}
	if len(raw)%4 != 0 {
		return nil, fmt.Errorf("load boot code %s: length %d is not a multiple of 4", path, len(raw))
	}
	words := make([]uint32, len(raw)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(raw[i*4:])
	}
	return words, nil
}
