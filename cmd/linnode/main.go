package main

//go-build: CGO_ENABLED=0

import (
	"flag"

	"github.com/golang/glog"

	"github.com/robotalks/linnode/pkg/config"
	fx "github.com/robotalks/linnode/pkg/framework"
	"github.com/robotalks/linnode/pkg/node"
)

func init() {
	config.SetupFlags(flag.CommandLine)
}

func main() {
	flag.Parse()
	defer glog.Flush()

	cfg, err := config.Load(flag.CommandLine)
	if err != nil {
		glog.Exitf("config: %v", err)
	}
	n, err := node.Open(cfg)
	if err != nil {
		glog.Exitf("node: %v", err)
	}
	ctx := fx.NewRunner().HandleSignals().Context
	fx.NewLoop().Add(n).RunOrFail(ctx)
}
