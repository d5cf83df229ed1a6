// Copyright 2019 The go-xgp Authors
// This file is part of go-xgp.
//
// go-xgp is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// go-xgp is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with go-xgp. If not, see <http://www.gnu.org/licenses/>.

// xgp is the command-line entry point of the node: chain inspection,
// wallet management, transfers, mining and the HTTP server.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"gopkg.in/urfave/cli.v1"

	"github.com/xugenping/go-xgp/api"
	"github.com/xugenping/go-xgp/blockchain"
	"github.com/xugenping/go-xgp/node"
	"github.com/xugenping/go-xgp/params"
	"github.com/xugenping/go-xgp/storage/database"
	"github.com/xugenping/go-xgp/wallet"
)

var (
	difficultyFlag = cli.IntFlag{
		Name:  "difficulty",
		Usage: "Mining difficulty in leading zero hex characters",
		Value: blockchain.DefaultConfig.Difficulty,
	}
	datadirFlag = cli.StringFlag{
		Name:  "datadir",
		Usage: "Directory for chain data",
		Value: node.DefaultConfig.DataDir,
	}
	dbtypeFlag = cli.StringFlag{
		Name:  "dbtype",
		Usage: "Database backend (leveldb, badger, memory)",
		Value: string(database.LevelDB),
	}
	addrFlag = cli.StringFlag{
		Name:  "addr",
		Usage: "HTTP listen address",
		Value: ":5000",
	}
)

func main() {
	app := cli.NewApp()
	app.Name = "xgp"
	app.Usage = fmt.Sprintf("the %s blockchain node", params.TokenName)
	app.Flags = []cli.Flag{difficultyFlag, datadirFlag, dbtypeFlag}
	app.Commands = []cli.Command{
		{
			Name:   "init",
			Usage:  "Initialize a new chain and persist its genesis snapshot",
			Action: initChain,
			Flags:  []cli.Flag{difficultyFlag, datadirFlag, dbtypeFlag},
		},
		{
			Name:   "wallet",
			Usage:  "Generate a wallet and print its keyfile",
			Action: newWallet,
		},
		{
			Name:      "send",
			Usage:     "Sign and queue a transfer from the node wallet",
			ArgsUsage: "<recipient> <amount>",
			Action:    sendTransaction,
			Flags:     []cli.Flag{difficultyFlag, datadirFlag, dbtypeFlag},
		},
		{
			Name:   "mine",
			Usage:  "Mine the pending transactions into one block",
			Action: mineBlock,
			Flags:  []cli.Flag{difficultyFlag, datadirFlag, dbtypeFlag},
		},
		{
			Name:      "balance",
			Usage:     "Print the balance of an address",
			ArgsUsage: "<address>",
			Action:    showBalance,
			Flags:     []cli.Flag{datadirFlag, dbtypeFlag},
		},
		{
			Name:   "validate",
			Usage:  "Check every block hash and linkage",
			Action: validateChain,
			Flags:  []cli.Flag{datadirFlag, dbtypeFlag},
		},
		{
			Name:   "serve",
			Usage:  "Run the node with its HTTP API",
			Action: serve,
			Flags:  []cli.Flag{difficultyFlag, datadirFlag, dbtypeFlag, addrFlag},
		},
	}

	if err := app.Run(os.Args); err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}

func buildNode(ctx *cli.Context) (*node.Node, error) {
	config := node.DefaultConfig
	config.Chain.Difficulty = ctx.Int(difficultyFlag.Name)
	config.DataDir = ctx.String(datadirFlag.Name)
	config.DBType = database.DBType(ctx.String(dbtypeFlag.Name))
	return node.New(config)
}

func initChain(ctx *cli.Context) error {
	n, err := buildNode(ctx)
	if err != nil {
		return err
	}
	defer n.Stop()
	genesis := n.Chain().GetBlock(0)
	color.Green("Initialized chain")
	fmt.Printf("genesis: %s\ndifficulty: %d\n", genesis.Hash, n.Chain().Config().Difficulty)
	return nil
}

func newWallet(_ *cli.Context) error {
	w, err := wallet.New()
	if err != nil {
		return err
	}
	enc, err := w.MarshalJSON()
	if err != nil {
		return err
	}
	fmt.Println(string(enc))
	return nil
}

func sendTransaction(ctx *cli.Context) error {
	if ctx.NArg() != 2 {
		return fmt.Errorf("usage: xgp send <recipient> <amount>")
	}
	var amount float64
	if _, err := fmt.Sscanf(ctx.Args().Get(1), "%f", &amount); err != nil {
		return fmt.Errorf("invalid amount: %v", ctx.Args().Get(1))
	}
	n, err := buildNode(ctx)
	if err != nil {
		return err
	}
	defer n.Stop()
	tx, err := n.SendTransaction(ctx.Args().Get(0), amount)
	if err != nil {
		return err
	}
	color.Green("Queued transfer of %v %s", tx.Amount, params.TokenSymbol)
	return nil
}

func mineBlock(ctx *cli.Context) error {
	n, err := buildNode(ctx)
	if err != nil {
		return err
	}
	defer n.Stop()
	block := n.Chain().MinePending(n.Wallet().Address())
	color.Green("Mined block #%d", block.Index)
	fmt.Printf("hash: %s\nnonce: %d\ntxs: %d\nreward: %d %s\n",
		block.Hash, block.Nonce, len(block.Transactions), block.Reward, params.TokenSymbol)
	return nil
}

func showBalance(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return fmt.Errorf("usage: xgp balance <address>")
	}
	n, err := buildNode(ctx)
	if err != nil {
		return err
	}
	defer n.Stop()
	fmt.Printf("%v %s\n", n.Chain().Balance(ctx.Args().First()), params.TokenSymbol)
	return nil
}

func validateChain(ctx *cli.Context) error {
	n, err := buildNode(ctx)
	if err != nil {
		return err
	}
	defer n.Stop()
	if !n.Chain().Valid() {
		return fmt.Errorf("chain validation failed")
	}
	color.Green("Chain is valid (%d blocks)", n.Chain().Len())
	return nil
}

func serve(ctx *cli.Context) error {
	n, err := buildNode(ctx)
	if err != nil {
		return err
	}
	defer n.Stop()
	server := api.NewServer(n, ctx.String(addrFlag.Name))
	return server.ListenAndServe()
}
