// Command pipesim is the CLI surface over the pipeline core: assembling
// source, loading binary-line programs, running or single-stepping the
// five-stage pipeline, and serving the HTTP/WebSocket debugger API.
package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/go-pipesim/pipesim/api"
	"github.com/go-pipesim/pipesim/asm"
	"github.com/go-pipesim/pipesim/config"
	"github.com/go-pipesim/pipesim/decode"
	"github.com/go-pipesim/pipesim/isa"
	"github.com/go-pipesim/pipesim/loader"
	"github.com/go-pipesim/pipesim/memory"
	"github.com/go-pipesim/pipesim/pipeline"
)

// Version is overridden at build time with -ldflags "-X main.Version=...".
var Version = "dev"

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "pipesim",
		Short:   "Five-stage pipeline simulator with a two-level cache hierarchy",
		Version: Version,
	}

	root.AddCommand(runCmd(), stepCmd(), assembleCmd(), decodeCmd(), serveCmd())
	return root
}

// geometryFlags holds the cache/RAM overrides common to run and step.
type geometryFlags struct {
	addressSize uint
	l1Index     uint
	l2Index     uint
	l1Latency   uint32
	l2Latency   uint32
	ramLatency  uint32
	maxCycles   uint64
	entry       string
	configPath  string
}

func (g *geometryFlags) register(cmd *cobra.Command) {
	cmd.Flags().UintVar(&g.addressSize, "address-size", 0, "address bits (0 = use config default)")
	cmd.Flags().UintVar(&g.l1Index, "l1-index-bits", 0, "L1 index bits (0 = use config default)")
	cmd.Flags().UintVar(&g.l2Index, "l2-index-bits", 0, "L2 index bits (0 = use config default)")
	cmd.Flags().Uint32Var(&g.l1Latency, "l1-latency", 0, "L1 hit latency in cycles (0 = use config default)")
	cmd.Flags().Uint32Var(&g.l2Latency, "l2-latency", 0, "L2 hit latency in cycles (0 = use config default)")
	cmd.Flags().Uint32Var(&g.ramLatency, "ram-size", 0, "RAM access latency in cycles (0 = use config default)")
	cmd.Flags().Uint64Var(&g.maxCycles, "max-cycles", 0, "maximum ticks before halting (0 = use config default)")
	cmd.Flags().StringVar(&g.entry, "entry", "", "entry point address, hex (0x..) or decimal (empty = 0)")
	cmd.Flags().StringVar(&g.configPath, "config", "", "path to a pipesim TOML config file")
}

func (g *geometryFlags) buildPipeline() (*pipeline.Pipeline, *config.Config, error) {
	cfg := config.DefaultConfig()
	if g.configPath != "" {
		loaded, err := config.LoadFrom(g.configPath)
		if err != nil {
			return nil, nil, err
		}
		cfg = loaded
	}

	addressSize := cfg.Cache.AddressSize
	if g.addressSize != 0 {
		addressSize = g.addressSize
	}
	l1Index := cfg.Cache.L1IndexBits
	if g.l1Index != 0 {
		l1Index = g.l1Index
	}
	l2Index := cfg.Cache.L2IndexBits
	if g.l2Index != 0 {
		l2Index = g.l2Index
	}
	l1Latency := cfg.Cache.L1Latency
	if g.l1Latency != 0 {
		l1Latency = g.l1Latency
	}
	l2Latency := cfg.Cache.L2Latency
	if g.l2Latency != 0 {
		l2Latency = g.l2Latency
	}
	ramLatency := cfg.Cache.RAMReadLatency
	if g.ramLatency != 0 {
		ramLatency = g.ramLatency
		cfg.Cache.RAMWriteLatency = g.ramLatency
	}
	if g.maxCycles != 0 {
		cfg.Execution.MaxCycles = g.maxCycles
	}

	ram := memory.NewRAM(addressSize, ramLatency, cfg.Cache.RAMWriteLatency)
	l1 := memory.NewLevel("L1", addressSize, l1Index, l1Latency)
	l2 := memory.NewLevel("L2", addressSize, l2Index, l2Latency)
	mem := memory.NewSubsystem(l1, l2, ram)

	p := pipeline.New(mem, cfg.Execution.StackBase)
	return p, cfg, nil
}

func (g *geometryFlags) entryAddr() (uint32, error) {
	if g.entry == "" {
		return 0, nil
	}
	s := g.entry
	base := 10
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		s = s[2:]
		base = 16
	}
	v, err := strconv.ParseUint(s, base, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid --entry %q: %w", g.entry, err)
	}
	return uint32(v), nil
}

// loadProgram reads path, assembling it if it doesn't look like a
// binary-line program, and loads it into p's RAM at entry.
func loadProgram(p *pipeline.Pipeline, path string, entry uint32) (map[string]uint32, error) {
	raw, err := os.ReadFile(path) // #nosec G304 -- CLI-supplied program path
	if err != nil {
		return nil, fmt.Errorf("pipesim: reading %s: %w", path, err)
	}
	source := string(raw)

	if looksAssembled(source) {
		if err := loader.LoadString(source, p.Mem.RAM, entry); err != nil {
			return nil, err
		}
		return nil, nil
	}

	syms, err := loader.LoadAssembled(source, p.Mem.RAM, entry)
	if err != nil {
		return nil, err
	}
	p.Regs.SetPC(entry)
	if syms == nil {
		return nil, nil
	}
	return syms.Addresses(), nil
}

// looksAssembled reports whether source already is a binary-line program:
// every non-blank, non-comment line is exactly 32 characters of {0,1}.
func looksAssembled(source string) bool {
	for _, line := range strings.Split(source, "\n") {
		if idx := strings.IndexByte(line, '#'); idx >= 0 {
			line = line[:idx]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if len(line) != 32 || strings.Trim(line, "01") != "" {
			return false
		}
	}
	return true
}

func runCmd() *cobra.Command {
	var g geometryFlags
	var showStats bool
	var showRegs bool

	cmd := &cobra.Command{
		Use:   "run <program>",
		Short: "Assemble or load a program and run it to completion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, cfg, err := g.buildPipeline()
			if err != nil {
				return err
			}
			entry, err := g.entryAddr()
			if err != nil {
				return err
			}
			if _, err := loadProgram(p, args[0], entry); err != nil {
				return err
			}
			p.Regs.SetPC(entry)

			if _, err := p.Step(int(cfg.Execution.MaxCycles)); err != nil {
				return fmt.Errorf("pipesim: run halted: %w", err)
			}
			if !p.Finished() {
				fmt.Fprintf(os.Stderr, "pipesim: reached max-cycles (%d) before END retired\n", cfg.Execution.MaxCycles)
			}

			fmt.Printf("retired in %d cycles\n", p.Cycle)
			if showRegs {
				printRegisters(p)
			}
			if showStats {
				printStatistics(p)
			}
			return nil
		},
	}
	g.register(cmd)
	cmd.Flags().BoolVar(&showStats, "stats", false, "print per-cycle statistics after running")
	cmd.Flags().BoolVar(&showRegs, "registers", true, "print the register file after running")
	return cmd
}

func stepCmd() *cobra.Command {
	var g geometryFlags
	var n int

	cmd := &cobra.Command{
		Use:   "step <program>",
		Short: "Advance a program by a fixed number of ticks and print pipeline state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, _, err := g.buildPipeline()
			if err != nil {
				return err
			}
			entry, err := g.entryAddr()
			if err != nil {
				return err
			}
			if _, err := loadProgram(p, args[0], entry); err != nil {
				return err
			}
			p.Regs.SetPC(entry)

			ran, err := p.Step(n)
			if err != nil {
				return fmt.Errorf("pipesim: step halted after %d ticks: %w", ran, err)
			}
			fmt.Printf("cycle %d, finished=%v\n", p.Cycle, p.Finished())
			printRegisters(p)
			return nil
		},
	}
	g.register(cmd)
	cmd.Flags().IntVar(&n, "ticks", 1, "number of ticks to advance")
	return cmd
}

func assembleCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "assemble <source.s>",
		Short: "Assemble a source file into the 32-char binary-line program format",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0]) // #nosec G304 -- CLI-supplied source path
			if err != nil {
				return err
			}
			words, _, err := asm.Assemble(string(raw))
			if err != nil {
				return fmt.Errorf("pipesim: assemble: %w", err)
			}

			var b strings.Builder
			for _, w := range words {
				fmt.Fprintf(&b, "%032b\n", w)
			}

			if output == "" {
				fmt.Print(b.String())
				return nil
			}
			return os.WriteFile(output, []byte(b.String()), 0600)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the program here instead of stdout")
	return cmd
}

func decodeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decode <program>",
		Short: "Disassemble a binary-line program, one mnemonic per line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0]) // #nosec G304 -- CLI-supplied program path
			if err != nil {
				return err
			}
			defer f.Close()

			prog, err := loader.Parse(f)
			if err != nil {
				return err
			}
			for i, w := range prog.Words {
				inst, err := decode.Decode(w)
				if err != nil {
					fmt.Printf("%4d  %08X  ; %v\n", i, w, err)
					continue
				}
				fmt.Printf("%4d  %08X  %s\n", i, w, mnemonic(inst))
			}
			return nil
		},
	}
	return cmd
}

func serveCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP/WebSocket debugger API",
		RunE: func(cmd *cobra.Command, args []string) error {
			srv := api.NewServer(port)
			fmt.Printf("pipesim: serving debugger API on 127.0.0.1:%d\n", port)
			return srv.Start()
		},
	}
	cmd.Flags().IntVar(&port, "port", 8080, "API server port")
	return cmd
}

func printRegisters(p *pipeline.Pipeline) {
	regs, pc := p.Regs.Snapshot()
	for i := 0; i < len(regs); i += 4 {
		for j := i; j < i+4 && j < len(regs); j++ {
			fmt.Printf("r%-2d=%-10d ", j, regs[j])
		}
		fmt.Println()
	}
	fmt.Printf("pc=%d  N=%v Z=%v C=%v V=%v\n", pc, p.Flags.N, p.Flags.Z, p.Flags.C, p.Flags.V)
}

func printStatistics(p *pipeline.Pipeline) {
	s := p.Statistics
	fmt.Printf("cycles=%d retired=%d dependency-stalls=%d memory-stalls=%d fetch-stalls=%d\n",
		s.TotalCycles, s.RetiredCount, s.DependencyStallCycles, s.MemoryStallCycles, s.FetchStallCycles)
	fmt.Printf("L1 hits=%d misses=%d  L2 hits=%d misses=%d\n",
		p.Mem.L1Hits, p.Mem.L1Misses, p.Mem.L2Hits, p.Mem.L2Misses)
}

// mnemonic renders a decoded instruction close to the assembler's own
// mnemonic spelling, mirroring api.disassemble.
func mnemonic(inst decode.Instruction) string {
	switch v := inst.(type) {
	case decode.ALUInstruction:
		if v.Immediate {
			return fmt.Sprintf("%s r%d, r%d, #%d", v.Op, v.Dest, v.Op1, v.ImmValue)
		}
		return fmt.Sprintf("%s r%d, r%d, r%d", v.Op, v.Dest, v.Op1, v.Op2)
	case decode.CMPInstruction:
		if v.Immediate {
			return fmt.Sprintf("CMP r%d, #%d", v.Op1, v.ImmValue)
		}
		return fmt.Sprintf("CMP r%d, r%d", v.Op1, v.Op2)
	case decode.LDRInstruction:
		if v.Literal {
			return fmt.Sprintf("LDR r%d, #%d", v.Dest, v.LitValue)
		}
		return fmt.Sprintf("LDR r%d, [r%d, #%d]", v.Dest, v.Base, v.Offset)
	case decode.STRInstruction:
		return fmt.Sprintf("STR r%d, [r%d, #%d]", v.Src, v.Base, v.Offset)
	case decode.BranchInstruction:
		m := "B"
		if v.Link {
			m = "BL"
		}
		if v.Cond != isa.CondAL {
			m += v.Cond.String()
		}
		if v.Immediate {
			return fmt.Sprintf("%s #%d", m, v.ImmValue)
		}
		return fmt.Sprintf("%s [r%d, #%d]", m, v.Base, v.Offset)
	case decode.PushInstruction:
		return fmt.Sprintf("PUSH r%d", v.Src)
	case decode.PopInstruction:
		return fmt.Sprintf("POP r%d", v.Dest)
	case decode.NoopInstruction:
		return "NOP"
	case decode.EndInstruction:
		return "END"
	case decode.ReservedInstruction:
		return fmt.Sprintf("; reserved opcode %s", v.Opcode)
	default:
		return fmt.Sprintf("%s", inst.Category())
	}
}
