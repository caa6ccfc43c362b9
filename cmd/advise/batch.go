package main

import (
	"bufio"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"care-advisor/internal/dto"
	"care-advisor/internal/models"
	"care-advisor/internal/service"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// batchResult is one line of the batch output file.
type batchResult struct {
	Query    string                `json:"query"`
	Status   models.AdvisoryStatus `json:"status"`
	Score    int                   `json:"score"`
	Degraded bool                  `json:"degraded"`
	Reason   string                `json:"reason,omitempty"`
	Response dto.AdvisoryResponse  `json:"response"`
}

// processedQuery is a query already evaluated by an earlier run.
type processedQuery struct {
	Hash        string    `json:"hash"`
	ProcessedAt time.Time `json:"processed_at"`
}

// batchState lets an interrupted batch resume where it stopped. Only queries
// with a settled outcome are recorded.
type batchState struct {
	Processed map[string]processedQuery `json:"processed"` // key: query hash
}

// settled reports whether an outcome is final. Errors and degraded answers
// (provider down, timeout, cancelled run) are evaluated again on the next run.
func settled(out service.Outcome) bool {
	return out.Status != models.AdvisoryStatusError && !out.Decision.Degraded
}

func newBatchCmd() *cobra.Command {
	var (
		outPath     string
		statePath   string
		concurrency int
		audit       bool
	)

	cmd := &cobra.Command{
		Use:   "batch <queries-file>",
		Short: "Evaluate every line of a file and write one JSON result per line",
		Long: `Runs each non-empty line of the input file through the advisory pipeline.
Lines starting with # are ignored. With --state, queries already answered by a
previous run are skipped; errors and degraded answers are retried. The state
file is updated after every settled query, so an interrupted run resumes.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			queries, err := readQueries(args[0])
			if err != nil {
				return err
			}

			state, err := loadBatchState(statePath)
			if err != nil {
				return err
			}

			var pending []string
			for _, q := range queries {
				if _, done := state.Processed[queryHash(q)]; !done {
					pending = append(pending, q)
				}
			}
			appLog.Info("Starting batch",
				zap.Int("queries", len(queries)),
				zap.Int("pending", len(pending)),
			)
			if len(pending) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing to do")
				return nil
			}

			out := cmd.OutOrStdout()
			if outPath != "" {
				f, err := os.OpenFile(outPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
				if err != nil {
					return fmt.Errorf("open output: %w", err)
				}
				defer f.Close()
				out = f
			}

			ctx := cmd.Context()
			p, err := newPipeline(ctx, audit)
			if err != nil {
				return err
			}
			defer func() {
				closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.Audit.WriteTimeout)
				defer cancel()
				p.close(closeCtx)
			}()

			var (
				mu      sync.Mutex
				enc     = json.NewEncoder(out)
				counts  = make(map[models.AdvisoryStatus]int)
				retries int
			)

			g, gCtx := errgroup.WithContext(ctx)
			g.SetLimit(max(concurrency, 1))
			for _, q := range pending {
				g.Go(func() error {
					if gCtx.Err() != nil {
						return gCtx.Err()
					}
					reqCtx, cancel := context.WithTimeout(gCtx, cfg.LLM.Timeout+cfg.Audit.WaitTimeout)
					defer cancel()

					res := p.service.Evaluate(reqCtx, dto.AdvisoryRequest{Message: q})

					mu.Lock()
					defer mu.Unlock()
					if err := enc.Encode(batchResult{
						Query:    q,
						Status:   res.Status,
						Score:    res.Decision.Match.Score,
						Degraded: res.Decision.Degraded,
						Reason:   res.Decision.Reason,
						Response: res.Response,
					}); err != nil {
						return fmt.Errorf("write result: %w", err)
					}
					counts[res.Status]++
					if !settled(res) {
						retries++
						return nil
					}
					hash := queryHash(q)
					state.Processed[hash] = processedQuery{Hash: hash, ProcessedAt: time.Now().UTC()}
					if err := saveBatchState(statePath, state); err != nil {
						appLog.Warn("Failed to save batch state", zap.Error(err))
					}
					return nil
				})
			}
			runErr := g.Wait()

			printBatchSummary(cmd, counts, retries)
			if runErr != nil {
				return fmt.Errorf("batch interrupted: %w", runErr)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", "", "append results to this file instead of stdout")
	cmd.Flags().StringVar(&statePath, "state", "", "state file used to skip already evaluated queries")
	cmd.Flags().IntVarP(&concurrency, "concurrency", "c", 4, "queries evaluated in parallel")
	cmd.Flags().BoolVar(&audit, "audit", false, "write every interaction to the audit table")

	return cmd
}

func readQueries(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open queries: %w", err)
	}
	defer f.Close()

	var queries []string
	seen := make(map[string]bool)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || seen[line] {
			continue
		}
		seen[line] = true
		queries = append(queries, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read queries: %w", err)
	}
	return queries, nil
}

func queryHash(q string) string {
	sum := sha256.Sum256([]byte(q))
	return hex.EncodeToString(sum[:])
}

func loadBatchState(path string) (*batchState, error) {
	state := &batchState{Processed: make(map[string]processedQuery)}
	if path == "" {
		return state, nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) || (err == nil && len(data) == 0) {
		return state, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read state file: %w", err)
	}
	if err := json.Unmarshal(data, state); err != nil {
		return nil, fmt.Errorf("parse state file: %w", err)
	}
	if state.Processed == nil {
		state.Processed = make(map[string]processedQuery)
	}
	return state, nil
}

// saveBatchState replaces the state file through a rename so an interrupted
// write never leaves it truncated.
func saveBatchState(path string, state *batchState) error {
	if path == "" {
		return nil
	}
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write state file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace state file: %w", err)
	}
	return nil
}

func printBatchSummary(cmd *cobra.Command, counts map[models.AdvisoryStatus]int, retries int) {
	statuses := make([]string, 0, len(counts))
	total := 0
	for status, n := range counts {
		statuses = append(statuses, string(status))
		total += n
	}
	sort.Strings(statuses)

	w := cmd.ErrOrStderr()
	fmt.Fprintf(w, "Evaluated %d queries\n", total)
	for _, s := range statuses {
		fmt.Fprintf(w, "  %-14s %d\n", s, counts[models.AdvisoryStatus(s)])
	}
	if retries > 0 {
		fmt.Fprintf(w, "%d queries will be retried on the next run\n", retries)
	}
}
