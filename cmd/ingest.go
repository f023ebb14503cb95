package main

import (
	"bufio"
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/openprocure/procurement-pipeline/internal/model"
	"github.com/openprocure/procurement-pipeline/internal/queue"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Load parsed records and queue them for cleaning",
}

var ingestTendersCmd = &cobra.Command{
	Use:   "tenders <file.ndjson>",
	Short: "Ingest parsed tenders from an NDJSON file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		count := 0
		err = eachLine(args[0], func(line []byte) error {
			var parsed model.ParsedTender
			if err := json.Unmarshal(line, &parsed); err != nil {
				return eris.Wrap(err, "ingest: decode tender")
			}
			if parsed.ID == "" || parsed.Source == "" {
				return eris.New("ingest: tender missing id or source")
			}
			if err := env.store.PutParsedTender(ctx, &parsed); err != nil {
				return err
			}
			if err := env.queue.Publish(ctx, queue.TopicCleanTender, parsed.ID); err != nil {
				return err
			}
			count++
			return nil
		})
		if err != nil {
			return err
		}

		zap.L().Info("tenders ingested", zap.Int("count", count))
		return nil
	},
}

var ingestBodiesCmd = &cobra.Command{
	Use:   "bodies <file.ndjson>",
	Short: "Ingest parsed organizations from an NDJSON file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		count := 0
		err = eachLine(args[0], func(line []byte) error {
			var parsed model.ParsedBody
			if err := json.Unmarshal(line, &parsed); err != nil {
				return eris.Wrap(err, "ingest: decode body")
			}
			if parsed.ID == "" || parsed.Source == "" {
				return eris.New("ingest: body missing id or source")
			}
			if err := env.store.PutParsedBody(ctx, &parsed); err != nil {
				return err
			}
			if err := env.queue.Publish(ctx, queue.TopicCleanBody, parsed.ID); err != nil {
				return err
			}
			count++
			return nil
		})
		if err != nil {
			return err
		}

		zap.L().Info("bodies ingested", zap.Int("count", count))
		return nil
	},
}

// eachLine calls fn for every non-empty line of an NDJSON file.
func eachLine(path string, fn func(line []byte) error) error {
	f, err := os.Open(path)
	if err != nil {
		return eris.Wrapf(err, "ingest: open %s", path)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		if err := fn(line); err != nil {
			return err
		}
	}
	return eris.Wrapf(scanner.Err(), "ingest: read %s", path)
}

func init() {
	ingestCmd.AddCommand(ingestTendersCmd)
	ingestCmd.AddCommand(ingestBodiesCmd)
	rootCmd.AddCommand(ingestCmd)
}
