// main.go
//
// Entry point for the Cowculator game server. Parses configuration (flags
// with env fallbacks, .env supported), validates the game rules, and starts
// the HTTP server. Exits non-zero on misconfiguration.

package main

import (
	"fmt"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/cowculator/cowculator/internal/code"
	"github.com/cowculator/cowculator/internal/httpserver"
	"github.com/cowculator/cowculator/internal/store"
)

var cli struct {
	Port         int    `help:"Port to listen on." default:"5175" env:"PORT"`
	Length       int    `help:"Secret code length." default:"4" env:"CODE_LENGTH"`
	Alphabet     string `help:"Symbols codes are drawn from." default:"0123456789" env:"CODE_ALPHABET"`
	AllowRepeats bool   `help:"Allow repeated symbols within a code." env:"ALLOW_REPEATS"`
	MaxAttempts  int    `help:"Guesses before a game is lost (0 = unlimited)." env:"MAX_ATTEMPTS"`
	LogLevel     string `help:"Log level (trace..panic)." default:"info" env:"LOG_LEVEL"`
}

func main() {
	_ = godotenv.Load()
	kong.Parse(&cli,
		kong.Name("cowculator"),
		kong.Description("Bulls and Cows number-guessing game server."),
	)
	if lvl, err := zerolog.ParseLevel(cli.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	rules := code.Rules{Length: cli.Length, Alphabet: cli.Alphabet, Unique: !cli.AllowRepeats}
	if err := rules.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid game rules")
	}

	mem := store.NewMemoryStore()
	srv := httpserver.New(mem, httpserver.Config{Rules: rules, MaxAttempts: cli.MaxAttempts})
	log.Info().
		Int("port", cli.Port).
		Int("length", rules.Length).
		Bool("uniqueSymbols", rules.Unique).
		Int("maxAttempts", cli.MaxAttempts).
		Msg("starting cowculator")
	if err := srv.Start(fmt.Sprintf(":%d", cli.Port)); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}
