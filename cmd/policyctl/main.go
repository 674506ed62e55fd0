// policyctl is a small operational CLI over the rule stores: it checks store
// health, lists and exports persisted rules, and applies ad-hoc rule
// mutations without going through an authorization engine.
package main

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/casbin-net/efcore-adapter-sub001/internal/adapter"
	"github.com/casbin-net/efcore-adapter-sub001/internal/common/logging"
	"github.com/casbin-net/efcore-adapter-sub001/internal/config"
	"github.com/casbin-net/efcore-adapter-sub001/internal/router"
	"github.com/casbin-net/efcore-adapter-sub001/internal/rules"
	"github.com/casbin-net/efcore-adapter-sub001/internal/storage"
	_ "github.com/casbin-net/efcore-adapter-sub001/internal/storage/postgres"
	_ "github.com/casbin-net/efcore-adapter-sub001/internal/storage/sqlite"
)

const usage = `Usage: policyctl <command> [args]

Commands:
  health                              check every configured store
  list                                print all persisted rules as CSV
  add <ptype> <v0> [v1..v5]           persist one rule
  remove <ptype> <v0> [v1..v5]        delete every row matching the tuple
  remove-filtered <ptype> <offset> <values...>
                                      delete rows matching a field filter
  import <file>                       load rules from a CSV file
  export <file>                       write all persisted rules to a CSV file

Configuration comes from the environment (and .env if present); see the
config package documentation for the variable list.`

func main() {
	_ = godotenv.Load()
	logging.InitGlobalLogger()
	defer logging.MustSync()

	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	a, closeStores, err := buildAdapter(cfg)
	if err != nil {
		log.Fatalf("Failed to build adapter: %v", err)
	}
	defer closeStores()

	if err := run(a, os.Args[1], os.Args[2:]); err != nil {
		log.Fatalf("%s: %v", os.Args[1], err)
	}
}

func buildAdapter(cfg *config.Config) (*adapter.Adapter, func(), error) {
	primary, err := storage.NewStore(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create primary store: %w", err)
	}

	var r *router.Router
	closeStores := func() { primary.Close() }

	if cfg.PartitionEnabled {
		secondary, err := storage.NewSecondaryStore(cfg)
		if err != nil {
			primary.Close()
			return nil, nil, fmt.Errorf("failed to create secondary store: %w", err)
		}
		closeStores = func() {
			primary.Close()
			secondary.Close()
		}

		r, err = router.NewPartitioned(cfg.PartitionMarker[0], primary, secondary)
		if err != nil {
			closeStores()
			return nil, nil, err
		}
	} else {
		r, err = router.NewSingle(primary)
		if err != nil {
			closeStores()
			return nil, nil, err
		}
	}

	a, err := adapter.NewWithRouter(r, adapter.WithLogger(logging.GetGlobalLogger()))
	if err != nil {
		closeStores()
		return nil, nil, err
	}
	return a, closeStores, nil
}

func run(a *adapter.Adapter, command string, args []string) error {
	switch command {
	case "health":
		return cmdHealth(a)
	case "list":
		return cmdExport(a, os.Stdout)
	case "add":
		if len(args) < 2 {
			return fmt.Errorf("usage: add <ptype> <v0> [v1..v5]")
		}
		return a.AddPolicy(args[0], args[1:])
	case "remove":
		if len(args) < 2 {
			return fmt.Errorf("usage: remove <ptype> <v0> [v1..v5]")
		}
		return a.RemovePolicy(args[0], args[1:])
	case "remove-filtered":
		if len(args) < 3 {
			return fmt.Errorf("usage: remove-filtered <ptype> <offset> <values...>")
		}
		offset, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("offset must be an integer: %w", err)
		}
		return a.RemoveFilteredPolicy(args[0], offset, args[2:]...)
	case "import":
		if len(args) != 1 {
			return fmt.Errorf("usage: import <file>")
		}
		return cmdImport(a, args[0])
	case "export":
		if len(args) != 1 {
			return fmt.Errorf("usage: export <file>")
		}
		file, err := os.Create(args[0])
		if err != nil {
			return fmt.Errorf("failed to create export file: %w", err)
		}
		defer file.Close()
		return cmdExport(a, file)
	default:
		fmt.Fprintln(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

func cmdHealth(a *adapter.Adapter) error {
	for _, store := range a.Router().Stores() {
		if err := store.Health(); err != nil {
			return fmt.Errorf("store %s (%s) unhealthy: %w", store.TableName(), store.Dialect(), err)
		}
		fmt.Printf("ok\t%s\t%s\n", store.Dialect(), store.TableName())
	}
	return nil
}

// csvModel collects loaded rules in arrival order for export.
type csvModel struct {
	lines []string
}

func (m *csvModel) AddRule(ruleType string, values []string) {
	m.lines = append(m.lines, rules.Join(ruleType, values))
}

func (m *csvModel) Rules() map[string][][]string {
	return nil
}

func cmdExport(a *adapter.Adapter, out *os.File) error {
	m := &csvModel{}
	if err := a.LoadPolicy(m); err != nil {
		return err
	}

	w := bufio.NewWriter(out)
	for _, line := range m.lines {
		fmt.Fprintln(w, line)
	}
	return w.Flush()
}

func cmdImport(a *adapter.Adapter, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open import file: %w", err)
	}
	defer file.Close()

	// Batch lines per rule type so each type lands in one commit.
	order := []string{}
	batches := map[string][][]string{}

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		ruleType, values := rules.Split(scanner.Text())
		if ruleType == "" {
			continue
		}
		if _, ok := batches[ruleType]; !ok {
			order = append(order, ruleType)
		}
		batches[ruleType] = append(batches[ruleType], values)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read import file: %w", err)
	}

	total := 0
	for _, ruleType := range order {
		if err := a.AddPolicies(ruleType, batches[ruleType]); err != nil {
			return err
		}
		total += len(batches[ruleType])
	}

	fmt.Printf("imported %d rules\n", total)
	return nil
}
