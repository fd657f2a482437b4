package main

import (
	"flag"

	"github.com/etnz/cellar"
	"github.com/etnz/cellar/cmd"
	"github.com/etnz/cellar/docs"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// fileFlags are the flags naming a file.
var fileFlags = map[string]complete.Predictor{
	"file":    predict.Files("*"),
	"ledger":  predict.Files("*.json*"),
	"csv":     predict.Files("*.csv"),
	"o":       predict.Files("*"),
	"metrics": predict.Files("*.prom"),
}

// completion describes the command line for shell completion.
func completion() *complete.Command {
	root := &complete.Command{
		Sub:   map[string]*complete.Command{},
		Flags: flags(flag.CommandLine),
	}
	for _, c := range cmd.Commands {
		fs := flag.NewFlagSet(c.Command.Name(), flag.ContinueOnError)
		c.Command.SetFlags(fs)
		root.Sub[c.Command.Name()] = &complete.Command{Flags: flags(fs)}
	}
	topics, _ := docs.GetAllTopics()
	root.Sub["topic"].Args = predict.Set(append(topics, "readme", "*"))
	var types predict.Set
	for _, t := range cellar.WineTypes {
		types = append(types, string(t))
	}
	for _, name := range []string{"add", "wish", "edit"} {
		root.Sub[name].Flags["type"] = types
	}
	root.Sub["list"].Flags["s"] = predict.Set{"cellar", "wishlist", "consumed"}
	return root
}

// flags predicts the values of every flag of fs. Boolean flags take no value.
func flags(fs *flag.FlagSet) map[string]complete.Predictor {
	m := map[string]complete.Predictor{}
	fs.VisitAll(func(f *flag.Flag) {
		if b, ok := f.Value.(interface{ IsBoolFlag() bool }); ok && b.IsBoolFlag() {
			m[f.Name] = nil
			return
		}
		if p, ok := fileFlags[f.Name]; ok {
			m[f.Name] = p
			return
		}
		m[f.Name] = predict.Something
	})
	return m
}
