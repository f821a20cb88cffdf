package commands

import (
	"fmt"

	"git.home.luguber.info/inful/docsite/internal/site"
)

// IndexCmd implements the 'index' command.
type IndexCmd struct{}

func (i *IndexCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	ctx := contextOf(g)
	st, err := site.New(cfg, loggerOf(g))
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	paths, err := st.Index(ctx)
	if err != nil {
		return abortOnCancel(ctx, err)
	}
	for _, p := range paths {
		fmt.Println(p)
	}
	return nil
}
