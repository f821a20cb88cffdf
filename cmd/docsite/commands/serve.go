package commands

import (
	"git.home.luguber.info/inful/docsite/internal/site"
)

// ServeCmd implements the 'serve' command.
type ServeCmd struct {
	Host string `help:"Override server.host"`
	Port int    `short:"p" help:"Override server.port"`
}

func (s *ServeCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	if s.Host != "" {
		cfg.Server.Host = s.Host
	}
	if s.Port > 0 {
		cfg.Server.Port = s.Port
	}

	ctx := contextOf(g)
	st, err := site.New(cfg, loggerOf(g))
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()
	return st.Serve(ctx)
}
