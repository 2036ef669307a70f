// Command armjit drives the ARM code-emission layer: it builds one
// translation block from a tiny built-in demo IR, optionally starts the
// terminal inspector or the telemetry server over it, and with -dump
// prints the resulting words as a hex/mnemonic listing. It does not host a 68k front-end of its
// own (out of scope per spec.md §1) — its job is to exercise and
// inspect the emitter, the way the teacher's main.go drove the
// emulator it shipped.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/armjit/m68k-arm-emitter/api"
	"github.com/armjit/m68k-arm-emitter/armasm"
	"github.com/armjit/m68k-arm-emitter/codebuf"
	"github.com/armjit/m68k-arm-emitter/config"
	"github.com/armjit/m68k-arm-emitter/debugger"
	"github.com/armjit/m68k-arm-emitter/emit"
	"github.com/armjit/m68k-arm-emitter/frontend/fake"
	"github.com/armjit/m68k-arm-emitter/jitlog"
	"github.com/armjit/m68k-arm-emitter/regs"
)

var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

func main() {
	var (
		showVersion = flag.Bool("version", false, "Show version information")
		configPath  = flag.String("config", "", "Path to a TOML config file (default: the standard config dir)")
		tuiMode     = flag.Bool("tui", false, "Open the terminal inspector over the built block")
		apiServer   = flag.Bool("api-server", false, "Start the telemetry HTTP+WebSocket server")
		apiAddr     = flag.String("listen", "", "Telemetry server listen address (overrides config)")
		regBlockHex = flag.String("regblock", "0x40000000", "Host address of the guest register block (hex)")
		dumpWords   = flag.Bool("dump", false, "Print the emitted block as a hex/mnemonic dump")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("armjit %s (commit %s, built %s)\n", Version, Commit, Date)
		return
	}

	log := jitlog.Default()

	cfg, err := loadConfig(*configPath, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	var regBlockBase uint64
	if _, err := fmt.Sscanf(*regBlockHex, "0x%x", &regBlockBase); err != nil {
		fmt.Fprintf(os.Stderr, "bad -regblock value %q: %v\n", *regBlockHex, err)
		os.Exit(1)
	}

	buf := codebuf.New(cfg.Emitter.CodeBufferSize)
	hooks := fake.New(buf)
	pool := hooks.Pool
	e := emit.New(buf, pool, hooks, armasm.RegStruct, cfg.Emitter.ARMv6T2)

	var broadcaster *api.Broadcaster
	var server *api.Server
	if *apiServer || cfg.Telemetry.Enabled {
		addr := cfg.Telemetry.ListenAddr
		if *apiAddr != "" {
			addr = *apiAddr
		}
		server, broadcaster = api.NewServer(addr)
		e.Sink = broadcaster
		log.Infof("telemetry enabled on %s", addr)
	}

	buildDemoBlock(e, uint32(regBlockBase))
	pool.Flush()

	log.With("words", buf.Cursor()/4).Infof("translation block emitted")

	if *dumpWords {
		dumpBlock(buf)
	}

	if server != nil {
		runWithGracefulShutdown(server, log)
		return
	}

	if *tuiMode {
		d := debugger.New(buf)
		d.Pool = pool
		tui := debugger.NewTUI(d)
		if err := tui.Run(); err != nil {
			fmt.Fprintf(os.Stderr, "tui: %v\n", err)
			os.Exit(1)
		}
	}
}

func loadConfig(path string, log *jitlog.Logger) (*config.Config, error) {
	if path != "" {
		return config.LoadFrom(path)
	}
	cfg, err := config.Load()
	if err != nil {
		log.Warnf("falling back to defaults: %v", err)
		return config.DefaultConfig(), nil
	}
	return cfg, nil
}

// buildDemoBlock emits a minimal but complete translation block: a
// prologue, a handful of representative integer ops, the
// exception-check inline poll, and an epilogue — enough to exercise
// every layer the -dump/-tui/-api-server flags want to show off.
func buildDemoBlock(e *emit.Emitter, regBlockBase uint32) {
	e.Prologue(regBlockBase)

	armasm.LDR(e.Buf, armasm.CondAL, armasm.R0, armasm.Offset(e.RegBase, int32(regs.OffD[0])))
	e.AddLImm(armasm.R0, armasm.R0, 1, true)
	armasm.STR(e.Buf, armasm.CondAL, armasm.R0, armasm.Offset(e.RegBase, int32(regs.OffD[0])))

	e.SubLImm(armasm.R1, armasm.R0, 0x1234, true)
	e.Cmp(armasm.R0, armasm.R1)

	site := e.HandleExcept()
	e.EndblockPCIsConst(regBlockBase + 4)

	// Exception trampoline: lands here when HandleExcept's poll finds a
	// pending guest exception, and simply re-exits the block.
	trampoline := e.Buf.Here()
	e.ResolveExceptTarget(site, trampoline)
	e.EndblockPCIsConst(regBlockBase)
}

func dumpBlock(buf *codebuf.Codebuf) {
	count := len(buf.Bytes()) / 4
	for i := 0; i < count; i++ {
		word := buf.WordAt(i * 4)
		fmt.Printf("%04d  %08x  %s\n", i, word, debugger.Disassemble(word))
	}
}

func runWithGracefulShutdown(server *api.Server, log *jitlog.Logger) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	var shutdownOnce sync.Once
	shutdown := func() {
		shutdownOnce.Do(func() {
			log.Infof("shutting down telemetry server")
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := server.Shutdown(ctx); err != nil {
				log.Errorf("shutdown: %v", err)
				os.Exit(1)
			}
		})
	}

	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			log.Errorf("telemetry server: %v", err)
			os.Exit(1)
		}
	}()

	<-sigChan
	shutdown()
}
