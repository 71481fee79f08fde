package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/yigit/schoolbook/internal/bootstrap"
	"github.com/yigit/schoolbook/internal/pkg/logger"
	"github.com/yigit/schoolbook/internal/server"
)

// @title Schoolbook API
// @version 1.0
// @description Student, instructor and course records with file and database persistence

// @host localhost:8080
// @BasePath /api/v1
// @schemes http

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Operator token, see -issue-token

func main() {
	configPath := flag.String("config", filepath.Join("configs", "config.yaml"), "path to the configuration file")
	issueToken := flag.String("issue-token", "", "print an operator token for NAME and exit")
	flag.Parse()

	if *issueToken != "" {
		os.Exit(printToken(*configPath, *issueToken))
	}

	srv, err := server.NewServer(*configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize server")
		os.Exit(1)
	}

	if err := srv.Run(); err != nil {
		logger.Error().Err(err).Msg("Server execution failed or shutdown encountered errors")
		os.Exit(1)
	}

	logger.Info().Msg("Application finished gracefully.")
}

func printToken(configPath, operator string) int {
	cfg, lgr, logOut, err := bootstrap.LoadConfigAndSetupLogger(configPath, true)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer logOut.Close()

	token, expiresIn, err := bootstrap.NewJWTService(cfg).IssueToken(operator)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to issue operator token")
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	lgr.Info().Str("operator", operator).Int("expiresIn", expiresIn).Msg("Operator token issued")
	fmt.Println(token)
	return 0
}
