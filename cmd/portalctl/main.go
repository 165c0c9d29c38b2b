package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/internhub/portal-service/internal/bootstrap"
	"github.com/internhub/portal-service/internal/config"
	"github.com/internhub/portal-service/internal/portal"
	"github.com/internhub/portal-service/internal/session"
)

func main() {
	if err := newApp(os.Stdout).Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp(out io.Writer) *cli.App {
	return &cli.App{
		Name:  "portalctl",
		Usage: "operate the intern portal data",
		Commands: []*cli.Command{
			{
				Name:  "seed",
				Usage: "write the fixture catalog to Firestore",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "catalog", Usage: "catalog YAML file (embedded catalog when empty)"},
				},
				Action: func(c *cli.Context) error {
					cfg, err := config.Load()
					if err != nil {
						return err
					}
					if cfg.DataStore != config.DataStoreFirestore {
						return fmt.Errorf("seed requires DATASTORE=firestore, got %s", cfg.DataStore)
					}
					catalog, err := portal.LoadCatalog(c.String("catalog"))
					if err != nil {
						return err
					}
					client, err := bootstrap.NewFirestoreClient(c.Context, cfg)
					if err != nil {
						return err
					}
					defer client.Close()

					res, err := portal.Seed(c.Context, client, catalog)
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "Seeded %d interns, %d achievements, %d donation stats\n", res.Interns, res.Achievements, res.Stats)
					return nil
				},
			},
			{
				Name:  "leaderboard",
				Usage: "print the podium and the rest of the leaderboard",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "as", Usage: "display name to highlight"},
				},
				Action: func(c *cli.Context) error {
					cfg, err := config.Load()
					if err != nil {
						return err
					}
					cfg.Fixture.SimulateLatency = false
					stores, cleanup, err := bootstrap.NewStores(c.Context, cfg, nil)
					if err != nil {
						return err
					}
					defer cleanup()

					svc, err := portal.NewService(stores.Source, nil)
					if err != nil {
						return err
					}
					view, err := svc.LoadLeaderboard(c.Context, session.Session{LoggedIn: c.String("as") != "", Name: c.String("as")})
					if err != nil {
						return err
					}
					printLeaderboard(out, view)
					return nil
				},
			},
			{
				Name:      "referral",
				Usage:     "derive the referral code for a name",
				ArgsUsage: "<name>",
				Action: func(c *cli.Context) error {
					if c.NArg() == 0 {
						return cli.Exit("a name is required", 1)
					}
					fmt.Fprintln(out, portal.ReferralCode(c.Args().First()))
					return nil
				},
			},
		},
	}
}

func printLeaderboard(out io.Writer, view *portal.LeaderboardView) {
	fmt.Fprintln(out, "Podium")
	for _, e := range view.Podium {
		printEntry(out, e)
	}
	if len(view.Others) > 0 {
		fmt.Fprintln(out, "Others")
	}
	for _, e := range view.Others {
		printEntry(out, e)
	}
}

func printEntry(out io.Writer, e portal.RankedEntry) {
	marker := " "
	if e.IsCurrentUser {
		marker = "*"
	}
	fmt.Fprintf(out, "%s %2d. %-3s %-20s %s\n", marker, e.Rank, e.Initials, e.Name, portal.FormatDonations(e.Donations))
}
