package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"sanctuary/domain"

	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/mama165/sdk-go/database"
	"github.com/olekukonko/tablewriter"
)

func main() {
	dbPath := flag.String("db", database.DefaultPath, "Path to badger DB")
	// One of "sanctuary:", "host:", "submission:"; chat messages are skipped
	prefix := flag.String("prefix", "sanctuary:", "Prefix to scan")
	flag.Parse()

	db, err := openDB(*dbPath)
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Key", "Type", "Created", "Sanctuary", "Owner", "State", "Detail"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	now := time.Now()
	err = db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefixBytes := []byte(*prefix)
		for it.Seek(prefixBytes); it.ValidForPrefix(prefixBytes); it.Next() {
			item := it.Item()
			rawKey := string(item.Key())

			err := item.Value(func(v []byte) error {
				row, err := toRow(rawKey, v, now)
				if err != nil {
					fmt.Printf("Error unmarshaling key %s: %v\n", rawKey, err)
					return nil
				}
				table.Append(row)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})

	if err != nil {
		log.Fatal(err)
	}

	table.Render()
}

func toRow(key string, v []byte, now time.Time) ([]string, error) {
	switch {
	case strings.HasPrefix(key, "host:"):
		var s domain.HostSession
		if err := json.Unmarshal(v, &s); err != nil {
			return nil, err
		}
		return []string{
			"host:" + s.TokenPrefix(), "HOST", s.CreatedAt.Format(time.DateTime),
			s.SanctuaryID, s.OwnerID, state(s.IsUsable(now)),
			fmt.Sprintf("last access %s from %s", s.LastAccessedAt.Format(time.TimeOnly), s.IPAddress),
		}, nil
	case strings.HasPrefix(key, "sanctuary:"):
		var s domain.Sanctuary
		if err := json.Unmarshal(v, &s); err != nil {
			return nil, err
		}
		return []string{
			key, "SANCTUARY", s.CreatedAt.Format(time.DateTime),
			s.ID, s.OwnerID, state(s.IsLive(now)),
			fmt.Sprintf("%s %s (%d submissions)", s.Emoji, s.Topic, s.SubmissionCount),
		}, nil
	case strings.HasPrefix(key, "submission:"):
		var s domain.Submission
		if err := json.Unmarshal(v, &s); err != nil {
			return nil, err
		}
		content := s.Content
		if len(content) > 40 {
			content = content[:40] + "..."
		}
		return []string{
			s.ID, "SUBMISSION", s.Timestamp.Format(time.DateTime),
			s.SanctuaryID, s.Alias, string(s.Type), content,
		}, nil
	}
	return []string{key, "RAW", "", "", "", "", fmt.Sprintf("%d bytes", len(v))}, nil
}

func state(live bool) string {
	if live {
		return color.Green.Sprint("live")
	}
	return color.Red.Sprint("expired")
}

func openDB(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).
		WithReadOnly(true).
		WithLogger(nil).
		WithBypassLockGuard(true).
		WithValueLogFileSize(10 * 1024 * 1024)

	db, err := badger.Open(opts)
	if err != nil {
		// A crashed writer leaves a value log that must be truncated once in write mode
		if strings.Contains(err.Error(), "Log truncate required") {
			repairOpts := badger.DefaultOptions(path).
				WithLogger(nil).WithBypassLockGuard(true)

			db, err = badger.Open(repairOpts)
			if err != nil {
				return nil, fmt.Errorf("repair failed: %w", err)
			}
			_ = db.Close()
			return badger.Open(opts)
		}
		return nil, err
	}
	return db, nil
}
