package main

import (
	"fmt"
	"log"
	"os"

	"stockforecast/cmd"
)

func main() {
	fmt.Println(os.Getenv("commit_hash"))
	apiHandler, cfg, err := cmd.InitializeDependencies()
	if err != nil {
		log.Fatal(err)
	}
	defer cmd.CloseDependencies(apiHandler)

	apiHandler.RetrainScheduler.Start()

	err = apiHandler.StartApi(cfg.Server.Port)
	if err != nil {
		log.Fatal(err)
	}
}
