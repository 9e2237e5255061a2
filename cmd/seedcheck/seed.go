package main

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/spf13/cobra"
)

var (
	seedGenCmd = &cobra.Command{
		Use:   "gen",
		Short: "generate a random mnemonic",
		Long: "this command lets you generate a new random recovery phrase to " +
			"write down and verify later",
		RunE: seedGen,
	}
	seedCmd = &cobra.Command{
		Use:   "seed",
		Short: "generate recovery phrases",
	}
)

func init() {
	seedCmd.AddCommand(seedGenCmd)
}

func seedGen(cmd *cobra.Command, args []string) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	reply := genSeedReply{}
	if err := client.call(http.MethodPost, "/v1/seed", nil, &reply); err != nil {
		printErr(err)
		return nil
	}

	fmt.Println(strings.Join(reply.Mnemonic, " "))
	return nil
}
