package cli

import (
	"fmt"

	"github.com/urfave/cli/v2"
)

var pagesCommand = &cli.Command{
	Name:  "pages",
	Usage: "List page models and their locators",
	Flags: []cli.Flag{pagesFlag},
	Action: func(c *cli.Context) error {
		catalog, err := loadCatalog(c.String("pages"))
		if err != nil {
			return err
		}
		p := &printer{w: c.App.Writer, colors: colorsEnabled(c.App.Writer, c.Bool("no-ansi"))}

		for _, name := range catalog.Names() {
			m, _ := catalog.Get(name)
			fmt.Fprintf(p.w, "%s%s%s\n", p.color(colorBold), name, p.color(colorReset))
			for _, field := range m.Fields() {
				loc, _ := m.Locator(field)
				fmt.Fprintf(p.w, "  %-20s %s%s%s\n", field, p.color(colorGray), loc, p.color(colorReset))
			}
		}
		return nil
	},
}
