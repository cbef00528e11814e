package main

import (
	"os"

	hospitalchatcmder "github.com/papercomputeco/hospitalchat/cmd/hospitalchat"
)

func main() {
	cmd := hospitalchatcmder.NewHospitalchatCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
