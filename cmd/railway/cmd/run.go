package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/raillang/railway/cmd/railway/loader"
	"github.com/raillang/railway/internal/railerr"
	"github.com/raillang/railway/internal/runner"
	"github.com/raillang/railway/internal/runtime"
	"github.com/raillang/railway/internal/value"
)

var (
	argN     int64
	hasArgN  bool
	f32Files []string
	f64Files []string
	i32Files []string
	i64Files []string
	threads  int
)

var runCmd = &cobra.Command{
	Use:   "run <program>.json",
	Short: "Run a program from its debug JSON AST",
	Long: `Execute a Railway program whose AST has already been serialized to the
debug JSON format described in cmd/railway/loader (not .rail source).

--n and the typed-file flags build the argv array passed to main: --n
pushes a single integer first, then each typed-file flag loads a flat
array of fixed-width values converted to exact rationals. Typed files are
pushed grouped by kind (all --f32, then --f64, --i32, --i64), each group
in the order its files were given.`,
	Args: cobra.ExactArgs(1),
	RunE: runProgram,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().Int64Var(&argN, "n", 0, "push an integer onto argv")
	runCmd.Flags().StringArrayVar(&f32Files, "f32", nil, "push a float32 typed data file onto argv")
	runCmd.Flags().StringArrayVar(&f64Files, "f64", nil, "push a float64 typed data file onto argv")
	runCmd.Flags().StringArrayVar(&i32Files, "i32", nil, "push an int32 typed data file onto argv")
	runCmd.Flags().StringArrayVar(&i64Files, "i64", nil, "push an int64 typed data file onto argv")
	runCmd.Flags().IntVar(&threads, "threads", 1, "default thread pool size visible to main")
}

func runProgram(cmd *cobra.Command, args []string) error {
	hasArgN = cmd.Flags().Changed("n")

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}
	mod, err := loader.LoadModule(data)
	if err != nil {
		return err
	}

	argv, err := buildArgv(cmd)
	if err != nil {
		return err
	}

	registry := runtime.NewRegistry()
	registry.Add(&runtime.ModuleEnv{AST: mod})

	runErr := runner.Run(runner.Config{
		Registry: registry,
		Root:     mod.Name,
		Argv:     argv,
		Threads:  threads,
		Stdout:   os.Stdout,
	})
	if runErr == nil {
		return nil
	}
	var re *railerr.RailError
	if errors.As(runErr, &re) {
		fmt.Fprintln(os.Stderr, re.Error())
	} else {
		fmt.Fprintln(os.Stderr, runErr.Error())
	}
	os.Exit(1)
	return nil
}

// buildArgv applies §6's ordering: -n (if given) first, then the typed
// files grouped by kind (f32, f64, i32, i64), each group in the order its
// files were given.
func buildArgv(cmd *cobra.Command) (*value.Array, error) {
	var elems []value.Value
	if hasArgN {
		elems = append(elems, value.NewInt(argN))
	}
	push := func(files []string, kind loader.Kind) error {
		for _, f := range files {
			arr, err := loader.LoadTypedArray(f, kind)
			if err != nil {
				return err
			}
			elems = append(elems, arr)
		}
		return nil
	}
	if err := push(f32Files, loader.KindF32); err != nil {
		return nil, err
	}
	if err := push(f64Files, loader.KindF64); err != nil {
		return nil, err
	}
	if err := push(i32Files, loader.KindI32); err != nil {
		return nil, err
	}
	if err := push(i64Files, loader.KindI64); err != nil {
		return nil, err
	}
	return value.NewArray(elems), nil
}
