package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestRunFileProducesSortedReport(test *testing.T) {
	input := "type, client, tx, amount\n" +
		"deposit, 2, 1, 2.0\n" +
		"deposit, 1, 2, 1.0\n" +
		"deposit, 1, 3, 2.0\n" +
		"withdrawal, 1, 4, 1.5\n" +
		"withdrawal, 2, 5, 3.0\n"
	path := filepath.Join(test.TempDir(), "transactions.csv")
	if err := os.WriteFile(path, []byte(input), 0o644); err != nil {
		test.Fatalf("write input: %v", err)
	}

	var output bytes.Buffer
	cfg := &runtimeConfig{Quiet: true}
	if err := runFile(context.Background(), cfg, path, &output); err != nil {
		test.Fatalf("run: %v", err)
	}

	want := "client,available,held,total,locked\n" +
		"1,1.5000,0.0000,1.5000,false\n" +
		"2,2.0000,0.0000,2.0000,false\n"
	if output.String() != want {
		test.Fatalf("unexpected report:\n%s\nwant:\n%s", output.String(), want)
	}
}

func TestRunFileFailsOnMalformedInput(test *testing.T) {
	path := filepath.Join(test.TempDir(), "transactions.csv")
	if err := os.WriteFile(path, []byte("deposit, 1, 1, not-a-number\n"), 0o644); err != nil {
		test.Fatalf("write input: %v", err)
	}
	var output bytes.Buffer
	if err := runFile(context.Background(), &runtimeConfig{Quiet: true}, path, &output); err == nil {
		test.Fatalf("expected parse failure to be fatal")
	}
}
