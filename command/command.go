/*
 * Altair Relaxed - Interactive command dispatch.
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

// Package command implements the interactive console's command
// dispatch: step/run/regs/mem/io/load/reset/cpu/quit against one of the
// machine's processors.
package command

import (
	"encoding/binary"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/rcornwell/altair-relaxed/config"
	"github.com/rcornwell/altair-relaxed/processor"
	"github.com/rcornwell/altair-relaxed/result"
	"github.com/rcornwell/altair-relaxed/util/hex"
	"github.com/rcornwell/altair-relaxed/vm"
)

// Dispatcher holds the console's view of the running machine: the set
// of processors it can drive and which one is currently selected.
type Dispatcher struct {
	machine *vm.Machine
	procs   []*processor.Processor
	current int
	out     io.Writer
	log     *slog.Logger
}

// New creates a Dispatcher over an already-populated machine.
func New(machine *vm.Machine, procs []*processor.Processor, out io.Writer, log *slog.Logger) *Dispatcher {
	return &Dispatcher{machine: machine, procs: procs, out: out, log: log}
}

type commandFunc func(d *Dispatcher, args string) error

var commands = map[string]commandFunc{
	"step":  cmdStep,
	"run":   cmdRun,
	"regs":  cmdRegs,
	"mem":   cmdMem,
	"io":    cmdIO,
	"load":  cmdLoad,
	"reset": cmdReset,
	"cpu":   cmdCPU,
}

// Execute runs one console line. quit is true when the console should
// stop reading further input.
func (d *Dispatcher) Execute(line string) (quit bool, err error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return false, nil
	}
	word, rest, _ := strings.Cut(line, " ")
	word = strings.ToLower(word)

	if word == "quit" || word == "exit" {
		return true, nil
	}

	fn, ok := commands[word]
	if !ok {
		return false, fmt.Errorf("unknown command %q", word)
	}
	return false, fn(d, strings.TrimSpace(rest))
}

func (d *Dispatcher) selected() (*processor.Processor, error) {
	if d.current < 0 || d.current >= len(d.procs) {
		return nil, fmt.Errorf("no processor selected")
	}
	return d.procs[d.current], nil
}

// cmdCPU selects a processor by index, or with no args lists the
// attached processors and which one is current.
func cmdCPU(d *Dispatcher, args string) error {
	if args == "" {
		return listCPUs(d)
	}
	idx, err := strconv.Atoi(args)
	if err != nil {
		return fmt.Errorf("cpu: %w", err)
	}
	if idx < 0 || idx >= len(d.procs) {
		return fmt.Errorf("cpu: index %d out of range (have %d processors)", idx, len(d.procs))
	}
	d.current = idx
	return nil
}

func listCPUs(d *Dispatcher) error {
	var line strings.Builder
	for i, p := range d.procs {
		line.Reset()
		hex.FormatDecimal(&line, byte(i))
		fmt.Fprintf(d.out, "cpu %s", line.String())

		selected := byte(0)
		if i == d.current {
			selected = 1
		}
		line.Reset()
		hex.FormatDigit(&line, selected)
		fmt.Fprintf(d.out, " selected=%s", line.String())

		line.Reset()
		hex.FormatByte(&line, byte(p.Flags()))
		fmt.Fprintf(d.out, " flags-lo=%s\n", line.String())
	}
	return nil
}

// cmdStep runs one decode/execute/DMA cycle on the selected processor.
func cmdStep(d *Dispatcher, args string) error {
	p, err := d.selected()
	if err != nil {
		return err
	}
	_, err = stepOnce(d, p)
	return err
}

// stepOnce runs one cycle; ended is true when Execute reported END_OF_CODE.
func stepOnce(d *Dispatcher, p *processor.Processor) (ended bool, err error) {
	if code, err := p.Decode(); err != nil {
		return false, fmt.Errorf("decode: %w", err)
	} else if code != result.Success {
		fmt.Fprintf(d.out, "decode: %s\n", code)
	}

	code, err := p.Execute()
	if err != nil && code != result.EndOfCode {
		return false, fmt.Errorf("execute: %w", err)
	}
	if code == result.EndOfCode {
		fmt.Fprintln(d.out, "END_OF_CODE")
		return true, nil
	}

	if code, err := p.ExecuteDMA(); err != nil {
		return false, fmt.Errorf("dma: %w", err)
	} else if code != result.Success {
		fmt.Fprintf(d.out, "dma: %s\n", code)
	}
	return false, nil
}

// cmdRun steps the selected processor until END_OF_CODE, an error, or a
// count given in args is reached.
func cmdRun(d *Dispatcher, args string) error {
	p, err := d.selected()
	if err != nil {
		return err
	}

	limit := 1 << 20
	if args != "" {
		n, err := strconv.Atoi(args)
		if err != nil {
			return fmt.Errorf("run: %w", err)
		}
		limit = n
	}

	for i := 0; i < limit; i++ {
		ended, err := stepOnce(d, p)
		if err != nil {
			return err
		}
		if ended {
			return nil
		}
	}
	return nil
}

// cmdRegs prints the integer register file of the selected processor.
func cmdRegs(d *Dispatcher, args string) error {
	p, err := d.selected()
	if err != nil {
		return err
	}
	for r := 0; r < 64; r += 4 {
		fmt.Fprintf(d.out, "r%-2d %016x r%-2d %016x r%-2d %016x r%-2d %016x\n",
			r, p.Register(r), r+1, p.Register(r+1), r+2, p.Register(r+2), r+3, p.Register(r+3))
	}
	var line strings.Builder
	hex.FormatWord(&line, []uint32{p.PC(), uint32(p.Flags())})
	fmt.Fprintf(d.out, "pc/flags %s\n", line.String())
	return nil
}

// cmdMem dumps DSRAM bytes: "mem <offset> <count>".
func cmdMem(d *Dispatcher, args string) error {
	p, err := d.selected()
	if err != nil {
		return err
	}
	fields := strings.Fields(args)
	if len(fields) != 2 {
		return fmt.Errorf("mem: usage: mem <offset> <count>")
	}
	offset, err := strconv.ParseUint(fields[0], 0, 32)
	if err != nil {
		return fmt.Errorf("mem: %w", err)
	}
	count, err := strconv.ParseUint(fields[1], 0, 32)
	if err != nil {
		return fmt.Errorf("mem: %w", err)
	}

	dsram := p.DSRAM()
	end := offset + count
	if end > uint64(len(dsram)) {
		end = uint64(len(dsram))
	}
	var line strings.Builder
	for i := offset; i < end; i += 16 {
		row := dsram[i:min(i+16, end)]
		line.Reset()
		hex.FormatBytes(&line, true, row)
		fmt.Fprintf(d.out, "%08x  %s\n", i, line.String())
	}
	return nil
}

// cmdIO dumps IOSRAM as 16-bit half-words: "io <offset> <count>", both
// in half-word units.
func cmdIO(d *Dispatcher, args string) error {
	p, err := d.selected()
	if err != nil {
		return err
	}
	fields := strings.Fields(args)
	if len(fields) != 2 {
		return fmt.Errorf("io: usage: io <offset> <count>")
	}
	offset, err := strconv.ParseUint(fields[0], 0, 32)
	if err != nil {
		return fmt.Errorf("io: %w", err)
	}
	count, err := strconv.ParseUint(fields[1], 0, 32)
	if err != nil {
		return fmt.Errorf("io: %w", err)
	}

	iosram := p.IOSRAM()
	halves := make([]uint16, 0, len(iosram)/2)
	for i := 0; i+1 < len(iosram); i += 2 {
		halves = append(halves, binary.LittleEndian.Uint16(iosram[i:]))
	}
	end := offset + count
	if end > uint64(len(halves)) {
		end = uint64(len(halves))
	}
	var line strings.Builder
	for i := offset; i < end; i += 8 {
		row := halves[i:min(i+8, end)]
		line.Reset()
		hex.FormatHalf(&line, true, row)
		fmt.Fprintf(d.out, "%08x  %s\n", i*2, line.String())
	}
	return nil
}

// cmdLoad creates a new processor from a boot-code file: "load <path>".
func cmdLoad(d *Dispatcher, args string) error {
	if args == "" {
		return fmt.Errorf("load: usage: load <boot-file>")
	}
	words, err := config.LoadBootCode(args)
	if err != nil {
		return err
	}
	p, err := d.machine.CreateProcessor(words)
	if err != nil {
		return err
	}
	d.procs = append(d.procs, p)
	d.current = len(d.procs) - 1
	fmt.Fprintf(d.out, "loaded cpu %d (%d words)\n", d.current, len(words))
	return nil
}

// cmdReset replaces the selected processor with a freshly booted one
// from the boot-code file named in args: "reset <boot-file>".
func cmdReset(d *Dispatcher, args string) error {
	if _, err := d.selected(); err != nil {
		return err
	}
	if args == "" {
		return fmt.Errorf("reset: usage: reset <boot-file>")
	}
	words, err := config.LoadBootCode(args)
	if err != nil {
		return err
	}
	old := d.procs[d.current]
	if err := d.machine.DestroyProcessor(old); err != nil {
		d.log.Warn("reset: destroy old processor", "error", err)
	}
	p, err := d.machine.CreateProcessor(words)
	if err != nil {
		return err
	}
	d.procs[d.current] = p
	return nil
}
