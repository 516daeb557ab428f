package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/peterkuimelis/greenhouse/internal/config"
	"github.com/peterkuimelis/greenhouse/internal/game"
	"github.com/peterkuimelis/greenhouse/internal/log"
	"github.com/peterkuimelis/greenhouse/internal/mod"
	"github.com/peterkuimelis/greenhouse/internal/save"
	"github.com/peterkuimelis/greenhouse/internal/storage"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "play":
		err = runPlay(os.Args[2:])
	case "catalog":
		err = runCatalog(os.Args[2:])
	case "saves":
		err = runSaves(os.Args[2:])
	default:
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  greenhouse play [--config FILE] [--rounds N] [--seed S] [--deck NAME|N] [--load SLOT] [--save SLOT]")
	fmt.Println("  greenhouse catalog [--config FILE]")
	fmt.Println("  greenhouse saves [--config FILE]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  play     Let the greedy player run a game and print its log")
	fmt.Println("  catalog  List every card, affliction and sticker, mods included")
	fmt.Println("  saves    List saved games")
}

func runPlay(args []string) error {
	fs := flag.NewFlagSet("play", flag.ExitOnError)
	cfgPath := fs.String("config", "greenhouse.yaml", "path to config file")
	rounds := fs.Int("rounds", 3, "rounds to play")
	seed := fs.Int64("seed", 0, "random seed (overrides the config)")
	deck := fs.String("deck", "", "deck from the decks file, by name or number")
	load := fs.String("load", "", "resume from a saved slot")
	saveAs := fs.String("save", "", "save the game to this slot when done")
	quiet := fs.Bool("quiet", false, "only print the final score")
	fs.Parse(args)

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		return err
	}
	if *seed != 0 {
		cfg.Seed = *seed
	}

	var logger log.EventLogger = log.NewTextLogger(os.Stdout)
	if *quiet {
		logger = log.NewMemoryLogger()
	}
	catalog, _, err := mod.BuildCatalog(cfg.ModsDir, logger)
	if err != nil {
		return err
	}

	sc := game.SessionConfig{Catalog: catalog, Rules: cfg.Rules(), Logger: logger, Seed: cfg.Seed}
	if name := firstNonEmpty(*deck, cfg.Deck); name != "" {
		deckName, cards, err := game.SelectDeck(cfg.DecksFile, name, catalog)
		if err != nil {
			return err
		}
		fmt.Printf("Playing deck %q (%d cards)\n", deckName, len(cards))
		sc.ActionDeck = cards
	}
	if cfg.Tutorial != "" {
		script, err := config.LoadTutorial(cfg.Tutorial)
		if err != nil {
			return err
		}
		sc.Tutorial = script
	}
	sess, err := game.NewSession(sc)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	codec := save.NewCodec(cfg.Save.MaxBytes, cfg.PersistDiscoveries)
	var store *storage.Store
	if *load != "" || *saveAs != "" {
		if store, err = storage.Open(cfg.SaveDB); err != nil {
			return err
		}
		defer store.Close()
	}
	if *load != "" {
		slot, err := store.Get(ctx, *load)
		if err != nil {
			return fmt.Errorf("load %q: %w", *load, err)
		}
		if err := codec.Load(ctx, sess, slot.Payload); err != nil {
			return fmt.Errorf("load %q: %w", *load, err)
		}
	}

	if err := sess.PlayRounds(ctx, game.GreedyController{}, *rounds); err != nil {
		return err
	}
	fmt.Printf("Round %d finished: score %d, money %d\n", sess.Round(), sess.Score, sess.Money)

	if *saveAs != "" {
		blob, err := codec.Save(sess)
		if err != nil {
			return err
		}
		slot, err := store.Put(ctx, storage.Slot{
			Name:      *saveAs,
			SessionID: sess.ID,
			Round:     sess.Round(),
			Turn:      sess.Turn(),
			Phase:     sess.Phase().Key(),
			Payload:   blob,
		})
		if err != nil {
			return err
		}
		fmt.Printf("Saved to %q (%d bytes)\n", slot.Name, len(blob))
	}
	return nil
}

func runCatalog(args []string) error {
	fs := flag.NewFlagSet("catalog", flag.ExitOnError)
	cfgPath := fs.String("config", "greenhouse.yaml", "path to config file")
	fs.Parse(args)

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		return err
	}
	logger := log.NewTextLogger(os.Stderr)
	catalog, report, err := mod.BuildCatalog(cfg.ModsDir, logger)
	if err != nil {
		return err
	}

	for _, kind := range []game.CardKind{game.CardPlant, game.CardAction, game.CardAffliction} {
		fmt.Printf("%s cards:\n", kind)
		for _, id := range catalog.CardTypes(kind) {
			proto, err := catalog.Prototype(id)
			if err != nil {
				return err
			}
			fmt.Printf("  %-24s %-22s value %-3d weight %d\n", id, proto.Name, proto.BaseValue(), proto.Weight)
		}
	}
	fmt.Println("Afflictions:")
	for _, a := range catalog.Afflictions() {
		fmt.Printf("  %-16s %-14s %s  treated by %s\n", a.ID, a.Kind, a.Color.Hex(), strings.Join(a.Vulnerable, ", "))
	}
	fmt.Println("Stickers:")
	for _, id := range catalog.StickerTypes() {
		st, err := catalog.NewSticker(id)
		if err != nil {
			return err
		}
		fmt.Printf("  %-16s %s\n", id, st.Name)
	}
	if n := len(report.Skipped); n > 0 {
		fmt.Printf("%d mod file(s) skipped, see the log above\n", n)
	}
	return nil
}

func runSaves(args []string) error {
	fs := flag.NewFlagSet("saves", flag.ExitOnError)
	cfgPath := fs.String("config", "greenhouse.yaml", "path to config file")
	fs.Parse(args)

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		return err
	}
	store, err := storage.Open(cfg.SaveDB)
	if err != nil {
		return err
	}
	defer store.Close()

	slots, err := store.List(context.Background())
	if err != nil {
		return err
	}
	if len(slots) == 0 {
		fmt.Println("No saved games.")
		return nil
	}
	for _, s := range slots {
		fmt.Printf("%-16s round %d turn %d %-18s %s\n", s.Name, s.Round, s.Turn, s.Phase, s.CreatedAt.Format("2006-01-02 15:04"))
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
