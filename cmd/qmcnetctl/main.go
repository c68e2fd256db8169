package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"

	"qmcnet/internal/storage"
	qmcapi "qmcnet/pkg/qmcnet"
)

const defaultDBPath = "qmcnet.db"

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("missing command")
	}

	switch args[0] {
	case "init":
		return runInit(ctx, args[1:])
	case "eval":
		return runEval(ctx, args[1:])
	case "describe":
		return runDescribe(ctx, args[1:])
	case "save":
		return runSave(ctx, args[1:])
	case "checkpoints":
		return runCheckpoints(ctx, args[1:])
	case "delete-checkpoint":
		return runDeleteCheckpoint(ctx, args[1:])
	case "amplitudes":
		return runAmplitudes(ctx, args[1:])
	default:
		return usageError(fmt.Sprintf("unknown command: %s", args[0]))
	}
}

func runInit(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", defaultDBPath, "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := qmcapi.New(qmcapi.Options{StoreKind: *storeKind, DBPath: *dbPath})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()
	if err := client.Init(ctx); err != nil {
		return err
	}

	fmt.Printf("initialized store=%s\n", *storeKind)
	return nil
}

func runEval(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("eval", flag.ContinueOnError)
	configPath := fs.String("config", "", "model config JSON path (default: hydrogen molecule)")
	checkpointID := fs.String("checkpoint", "", "evaluate a stored checkpoint instead of a fresh model")
	batchPath := fs.String("batch", "", "electron configuration batch JSON path")
	samples := fs.Int("samples", 16, "sampled configurations when no batch is given")
	spread := fs.Float64("spread", 1.0, "sampling spread around the nuclei")
	sampleSeed := fs.Uint64("sample-seed", 0, "sampling rng seed")
	persist := fs.Bool("persist", false, "persist amplitudes under the run id")
	traceOut := fs.String("trace-out", "", "write intermediate trace JSON to this path")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", defaultDBPath, "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	req := qmcapi.EvaluateRequest{
		CheckpointID: *checkpointID,
		Samples:      *samples,
		SampleSpread: *spread,
		SampleSeed:   *sampleSeed,
		Persist:      *persist,
		Trace:        *traceOut != "",
	}
	if *checkpointID == "" {
		model, err := loadOrDefaultModelRequest(*configPath)
		if err != nil {
			return err
		}
		req.Model = model
	} else if *configPath != "" {
		return errors.New("use either -config or -checkpoint, not both")
	}
	if *batchPath != "" {
		batch, err := loadConfigurations(*batchPath)
		if err != nil {
			return err
		}
		req.Configurations = batch
	}

	client, err := qmcapi.New(qmcapi.Options{StoreKind: *storeKind, DBPath: *dbPath})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	summary, err := client.Evaluate(ctx, req)
	if err != nil {
		return err
	}

	if *traceOut != "" {
		data, err := json.MarshalIndent(summary.Trace, "", "  ")
		if err != nil {
			return err
		}
		if err := os.WriteFile(*traceOut, data, 0o644); err != nil {
			return fmt.Errorf("write trace: %w", err)
		}
	}

	fmt.Printf("run=%s samples=%d log|psi| mean=%.6f stddev=%.6f zeros=%d\n",
		summary.RunID, len(summary.Amplitudes), summary.LogAbsMean, summary.LogAbsStdDev, summary.ZeroCount)
	for i, a := range summary.Amplitudes {
		fmt.Printf("  [%d] %+.9e\n", i, a)
	}
	return nil
}

func runDescribe(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("describe", flag.ContinueOnError)
	configPath := fs.String("config", "", "model config JSON path (default: hydrogen molecule)")
	checkpointID := fs.String("checkpoint", "", "describe a stored checkpoint instead of a fresh model")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", defaultDBPath, "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	req := qmcapi.DescribeRequest{CheckpointID: *checkpointID}
	if *checkpointID == "" {
		model, err := loadOrDefaultModelRequest(*configPath)
		if err != nil {
			return err
		}
		req.Model = model
	} else if *configPath != "" {
		return errors.New("use either -config or -checkpoint, not both")
	}

	client, err := qmcapi.New(qmcapi.Options{StoreKind: *storeKind, DBPath: *dbPath})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	summary, err := client.Describe(ctx, req)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(summary.Config, "", "  ")
	if err != nil {
		return err
	}
	fmt.Printf("%s\n", data)
	fmt.Printf("antisymmetrizers: up=%t down=%t tensors=%d\n", summary.AntiUp, summary.AntiDown, summary.NumTensors)
	for _, p := range summary.Parameters {
		fmt.Printf("  %s=%.6f\n", p.Label, p.Value)
	}
	return nil
}

func runSave(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("save", flag.ContinueOnError)
	configPath := fs.String("config", "", "model config JSON path (default: hydrogen molecule)")
	id := fs.String("id", "", "checkpoint id (optional, generated when empty)")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", defaultDBPath, "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	model, err := loadOrDefaultModelRequest(*configPath)
	if err != nil {
		return err
	}

	client, err := qmcapi.New(qmcapi.Options{StoreKind: *storeKind, DBPath: *dbPath})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	info, err := client.SaveCheckpoint(ctx, qmcapi.SaveCheckpointRequest{Model: model, ID: *id})
	if err != nil {
		return err
	}
	fmt.Printf("saved checkpoint=%s tensors=%d\n", info.ID, info.NumParams)
	return nil
}

func runCheckpoints(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("checkpoints", flag.ContinueOnError)
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", defaultDBPath, "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := qmcapi.New(qmcapi.Options{StoreKind: *storeKind, DBPath: *dbPath})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	infos, err := client.Checkpoints(ctx)
	if err != nil {
		return err
	}
	if len(infos) == 0 {
		fmt.Println("no checkpoints")
		return nil
	}
	for _, info := range infos {
		fmt.Printf("%s created=%s tensors=%d\n", info.ID, info.CreatedAtUTC, info.NumParams)
	}
	return nil
}

func runDeleteCheckpoint(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("delete-checkpoint", flag.ContinueOnError)
	id := fs.String("id", "", "checkpoint id")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", defaultDBPath, "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" {
		return errors.New("delete-checkpoint requires -id")
	}

	client, err := qmcapi.New(qmcapi.Options{StoreKind: *storeKind, DBPath: *dbPath})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	if err := client.DeleteCheckpoint(ctx, *id); err != nil {
		return err
	}
	fmt.Printf("deleted checkpoint=%s\n", *id)
	return nil
}

func runAmplitudes(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("amplitudes", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", defaultDBPath, "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID == "" {
		return errors.New("amplitudes requires -run-id")
	}

	client, err := qmcapi.New(qmcapi.Options{StoreKind: *storeKind, DBPath: *dbPath})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	record, err := client.Amplitudes(ctx, *runID)
	if err != nil {
		return err
	}
	fmt.Printf("run=%s created=%s samples=%d\n", record.RunID, record.CreatedAtUTC, len(record.Amplitudes))
	for i, a := range record.Amplitudes {
		fmt.Printf("  [%d] %+.9e\n", i, a)
	}
	return nil
}

func usageError(msg string) error {
	return fmt.Errorf("%s\nusage: qmcnetctl <init|eval|describe|save|checkpoints|delete-checkpoint|amplitudes> [flags]", msg)
}
