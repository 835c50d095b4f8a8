// Command hash-generator prints bcrypt digests for seeding accounts by hand.
//
//	hash-generator -cost 12 'first password' 'second password'
//
// With no arguments it reads one password per line from stdin.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/phrazzld/guidematch/internal/service/auth"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	cost := flag.Int("cost", bcrypt.DefaultCost, "bcrypt cost")
	flag.Parse()

	if err := run(os.Stdout, os.Stdin, *cost, flag.Args()); err != nil {
		fmt.Fprintln(os.Stderr, "hash-generator:", err)
		os.Exit(1)
	}
}

func run(out io.Writer, in io.Reader, cost int, passwords []string) error {
	hasher, err := auth.NewBcryptHasher(cost)
	if err != nil {
		return err
	}

	if len(passwords) == 0 {
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			passwords = append(passwords, scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			return fmt.Errorf("failed to read passwords: %w", err)
		}
	}

	for _, password := range passwords {
		digest, err := hasher.Hash(password)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintln(out, digest); err != nil {
			return err
		}
	}
	return nil
}
