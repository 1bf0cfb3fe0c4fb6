/*
 * Altair Relaxed - Virtual-machine container facade: object lifecycle
 * over a set of processors and attached physical memory.
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

// Package vm implements the virtual-machine container: the object
// lifecycle the processor engine is driven from (spec.md §3, §6). A
// Machine owns a set of processors and zero or more attached physical
// memories; destroying a Machine with live sub-objects is refused.
package vm

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/rcornwell/altair-relaxed/processor"
)

// Machine tracks the sub-objects created through it: a set of
// processors and a list of attached physical memories. Safe for
// concurrent use; the processors it hands out are not (spec.md §5).
type Machine struct {
	mu         sync.Mutex
	processors map[*processor.Processor]struct{}
	memories   []*PhysicalMemory
	log        *slog.Logger
}

// New creates an empty virtual machine.
func New(log *slog.Logger) *Machine {
	if log == nil {
		log = slog.Default()
	}
	return &Machine{
		processors: make(map[*processor.Processor]struct{}),
		log:        log,
	}
}

// CreateProcessor creates a Processor with the given boot code, owned
// by this machine (spec.md §6).
func (m *Machine) CreateProcessor(bootCode []uint32) (*processor.Processor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, err := processor.New(bootCode, m, m.log)
	if err != nil {
		return nil, fmt.Errorf("create processor: %w", err)
	}
	m.processors[p] = struct{}{}
	return p, nil
}

// DestroyProcessor releases a processor previously created by this
// machine. Using the processor afterward is undefined (spec.md §6).
func (m *Machine) DestroyProcessor(p *processor.Processor) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.processors[p]; !ok {
		return fmt.Errorf("destroy processor: not owned by this machine")
	}
	delete(m.processors, p)
	return nil
}

// CreatePhysicalMemory attaches a borrowed byte buffer as a physical
// memory device (spec.md §3, §6). The buffer is not copied; the host
// must keep it alive.
func (m *Machine) CreatePhysicalMemory(buf []byte) (*PhysicalMemory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	mem := &PhysicalMemory{buf: buf}
	m.memories = append(m.memories, mem)
	return mem, nil
}

// DestroyPhysicalMemory detaches a previously attached physical memory.
func (m *Machine) DestroyPhysicalMemory(mem *PhysicalMemory) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, existing := range m.memories {
		if existing == mem {
			m.memories = append(m.memories[:i], m.memories[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("destroy physical memory: not attached to this machine")
}

// FirstPhysicalMemory returns the first attached physical memory, if
// any. It satisfies the processor package's weakMachine interface,
// letting a Processor reach RAM for DMA without the processor package
// importing vm (spec.md §9 "parent back-reference").
func (m *Machine) FirstPhysicalMemory() (processor.PhysicalMemory, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.memories) == 0 {
		return nil, false
	}
	return m.memories[0], true
}

// Close destroys the machine. Sub-objects must be destroyed first
// (spec.md §6).
func (m *Machine) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.processors) > 0 {
		return fmt.Errorf("close machine: %d processor(s) still attached", len(m.processors))
	}
	if len(m.memories) > 0 {
		return fmt.Errorf("close machine: %d physical memory(s) still attached", len(m.memories))
	}
	return nil
}
