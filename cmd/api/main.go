package main

import (
	"log"
	"os"
	"strategysim/cmd"

	"go.uber.org/zap"
)

func main() {
	zap.S().Infow("starting api", "commitHash", os.Getenv("commit_hash"))
	apiHandler, port, err := cmd.InitializeDependencies()
	if err != nil {
		log.Fatal(err)
	}
	defer cmd.CloseDependencies(apiHandler)

	err = apiHandler.StartApi(port)
	if err != nil {
		log.Fatal(err)
	}
}
