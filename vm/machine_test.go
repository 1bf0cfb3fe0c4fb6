/*
 * Altair Relaxed - Virtual-machine container test cases.
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

package vm

import "testing"

// a single NOP.e bundle (unit=ALU category-0 type=6, end bit set), legal
// boot code for any processor created in these tests.
var nopEndBootCode = []uint32{2 | (0 << 2) | (6 << 4) | (1 << 7), 0}

func TestCreateProcessorIsOwnedByMachine(t *testing.T) {
	m := New(nil)

	p, err := m.CreateProcessor(nopEndBootCode)
	if err != nil {
		t.Fatalf("CreateProcessor() error: %v", err)
	}
	if p == nil {
		t.Fatalf("CreateProcessor() returned nil processor")
	}
	if len(m.processors) != 1 {
		t.Fatalf("processors = %d, want 1", len(m.processors))
	}
}

func TestCreateProcessorRejectsEmptyBootCode(t *testing.T) {
	m := New(nil)

	if _, err := m.CreateProcessor(nil); err == nil {
		t.Fatalf("CreateProcessor(nil) succeeded, want error")
	}
	if len(m.processors) != 0 {
		t.Fatalf("processors = %d, want 0 after failed create", len(m.processors))
	}
}

func TestDestroyProcessorRemovesOwnership(t *testing.T) {
	m := New(nil)
	p, err := m.CreateProcessor(nopEndBootCode)
	if err != nil {
		t.Fatalf("CreateProcessor() error: %v", err)
	}

	if err := m.DestroyProcessor(p); err != nil {
		t.Fatalf("DestroyProcessor() error: %v", err)
	}
	if len(m.processors) != 0 {
		t.Fatalf("processors = %d, want 0 after destroy", len(m.processors))
	}
}

func TestDestroyProcessorRejectsForeignProcessor(t *testing.T) {
	m1 := New(nil)
	m2 := New(nil)
	p, err := m1.CreateProcessor(nopEndBootCode)
	if err != nil {
		t.Fatalf("CreateProcessor() error: %v", err)
	}

	if err := m2.DestroyProcessor(p); err == nil {
		t.Fatalf("m2.DestroyProcessor(p) succeeded, want error: p belongs to m1")
	}
	if len(m1.processors) != 1 {
		t.Fatalf("m1.processors = %d, want 1 unchanged", len(m1.processors))
	}
}

func TestCreateAndDestroyPhysicalMemory(t *testing.T) {
	m := New(nil)
	buf := make([]byte, 64)

	mem, err := m.CreatePhysicalMemory(buf)
	if err != nil {
		t.Fatalf("CreatePhysicalMemory() error: %v", err)
	}
	if mem.Size() != 64 {
		t.Fatalf("Size() = %d, want 64", mem.Size())
	}
	if len(m.memories) != 1 {
		t.Fatalf("memories = %d, want 1", len(m.memories))
	}

	if err := m.DestroyPhysicalMemory(mem); err != nil {
		t.Fatalf("DestroyPhysicalMemory() error: %v", err)
	}
	if len(m.memories) != 0 {
		t.Fatalf("memories = %d, want 0 after destroy", len(m.memories))
	}
}

func TestDestroyPhysicalMemoryRejectsUnattached(t *testing.T) {
	m := New(nil)
	foreign := &PhysicalMemory{buf: make([]byte, 16)}

	if err := m.DestroyPhysicalMemory(foreign); err == nil {
		t.Fatalf("DestroyPhysicalMemory(foreign) succeeded, want error")
	}
}

func TestFirstPhysicalMemoryFirstAttachedWins(t *testing.T) {
	m := New(nil)

	if _, ok := m.FirstPhysicalMemory(); ok {
		t.Fatalf("FirstPhysicalMemory() ok on empty machine, want false")
	}

	first, err := m.CreatePhysicalMemory(make([]byte, 8))
	if err != nil {
		t.Fatalf("CreatePhysicalMemory() error: %v", err)
	}
	if _, err := m.CreatePhysicalMemory(make([]byte, 32)); err != nil {
		t.Fatalf("CreatePhysicalMemory() error: %v", err)
	}

	got, ok := m.FirstPhysicalMemory()
	if !ok {
		t.Fatalf("FirstPhysicalMemory() ok = false, want true")
	}
	if got != first {
		t.Fatalf("FirstPhysicalMemory() returned the second-attached memory, want the first")
	}
}

func TestFirstPhysicalMemoryAdvancesAfterDestroy(t *testing.T) {
	m := New(nil)
	first, _ := m.CreatePhysicalMemory(make([]byte, 8))
	second, _ := m.CreatePhysicalMemory(make([]byte, 32))

	if err := m.DestroyPhysicalMemory(first); err != nil {
		t.Fatalf("DestroyPhysicalMemory() error: %v", err)
	}

	got, ok := m.FirstPhysicalMemory()
	if !ok || got != second {
		t.Fatalf("FirstPhysicalMemory() = %v, %v, want %v, true", got, ok, second)
	}
}

func TestCloseRefusesWithLiveProcessor(t *testing.T) {
	m := New(nil)
	if _, err := m.CreateProcessor(nopEndBootCode); err != nil {
		t.Fatalf("CreateProcessor() error: %v", err)
	}

	if err := m.Close(); err == nil {
		t.Fatalf("Close() succeeded with a live processor attached, want error")
	}
}

func TestCloseRefusesWithLivePhysicalMemory(t *testing.T) {
	m := New(nil)
	if _, err := m.CreatePhysicalMemory(make([]byte, 8)); err != nil {
		t.Fatalf("CreatePhysicalMemory() error: %v", err)
	}

	if err := m.Close(); err == nil {
		t.Fatalf("Close() succeeded with a live physical memory attached, want error")
	}
}

func TestCloseSucceedsOnceDrained(t *testing.T) {
	m := New(nil)
	p, err := m.CreateProcessor(nopEndBootCode)
	if err != nil {
		t.Fatalf("CreateProcessor() error: %v", err)
	}
	mem, err := m.CreatePhysicalMemory(make([]byte, 8))
	if err != nil {
		t.Fatalf("CreatePhysicalMemory() error: %v", err)
	}

	if err := m.DestroyProcessor(p); err != nil {
		t.Fatalf("DestroyProcessor() error: %v", err)
	}
	if err := m.DestroyPhysicalMemory(mem); err != nil {
		t.Fatalf("DestroyPhysicalMemory() error: %v", err)
	}

	if err := m.Close(); err != nil {
		t.Fatalf("Close() error after draining sub-objects: %v", err)
	}
}
