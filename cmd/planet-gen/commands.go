package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"neurosphere/internal/migrate"
	"neurosphere/internal/neurosphere"
	"neurosphere/internal/params"
	"neurosphere/internal/planet"
	"neurosphere/internal/snapshot"
	"neurosphere/internal/store"
	"neurosphere/internal/utils"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "planet-gen",
		Short:         "Generate planets and query their locations offline",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newGenerateCmd(),
		newParamsCmd(),
		newDescribeCmd(),
		newReachableCmd(),
		newStatsCmd(),
		newSaveCmd(),
		newLoadCmd(),
		newListCmd(),
	)
	return root
}

// signalContext：Ctrl-C 取消正在进行的生成
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
}

func loadParams(path string, seed int64, radius float64, cmd *cobra.Command) (params.Generation, error) {
	g := params.Default()
	if path != "" {
		var err error
		if g, err = params.LoadFile(path); err != nil {
			return g, err
		}
	}
	g = params.ApplyEnv(g)
	if cmd.Flags().Changed("seed") {
		g.Seed = &seed
	}
	if cmd.Flags().Changed("radius") {
		g.Radius = radius
	}
	return g, nil
}

func newGenerateCmd() *cobra.Command {
	var (
		paramsPath string
		out        string
		seed       int64
		radius     float64
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a planet and write the world document",
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := loadParams(paramsPath, seed, radius, cmd)
			if err != nil {
				return err
			}
			ctx, stop := signalContext(cmd)
			defer stop()

			sp := neurosphere.New(nil)
			if out != "" {
				if _, err := os.Stat(out); err == nil {
					doc, err := snapshot.ReadFile(out)
					if err != nil {
						return err
					}
					if err := sp.Load(ctx, doc); err != nil {
						return err
					}
				}
			}
			p := planet.New(g)
			id, err := sp.AddWorld(ctx, p)
			if err != nil {
				return err
			}
			p.LogStatistics()
			st, _ := p.Statistics()
			fmt.Fprintf(cmd.OutOrStdout(), "world %d: seed %d, %d points, %d locations\n", id, st.Seed, st.Points, len(p.LocationIDs()))
			if out == "" {
				return nil
			}
			doc, err := sp.Document()
			if err != nil {
				return err
			}
			return snapshot.WriteFile(out, doc)
		},
	}
	cmd.Flags().StringVarP(&paramsPath, "params", "p", os.Getenv("PLANET_PARAMS"), "generation parameter file (yaml or json)")
	cmd.Flags().StringVarP(&out, "out", "o", os.Getenv("SNAPSHOT_PATH"), "world document to append to")
	cmd.Flags().Int64Var(&seed, "seed", 0, "override seed")
	cmd.Flags().Float64Var(&radius, "radius", 0, "override radius")
	return cmd
}

func newParamsCmd() *cobra.Command {
	var (
		paramsPath string
		seed       int64
		radius     float64
	)
	cmd := &cobra.Command{
		Use:   "params",
		Short: "Print the resolved generation parameters",
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := loadParams(paramsPath, seed, radius, cmd)
			if err != nil {
				return err
			}
			if err := params.Validate(g); err != nil {
				return err
			}
			b, err := params.Encode(g)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(b)
			return err
		},
	}
	cmd.Flags().StringVarP(&paramsPath, "params", "p", os.Getenv("PLANET_PARAMS"), "generation parameter file (yaml or json)")
	cmd.Flags().Int64Var(&seed, "seed", 0, "override seed")
	cmd.Flags().Float64Var(&radius, "radius", 0, "override radius")
	return cmd
}

// openSphere：读取世界文档；文档中待生成的世界会被就地生成
func openSphere(ctx context.Context, path string) (*neurosphere.Sphere, error) {
	if path == "" {
		return nil, errors.New("--snapshot is required")
	}
	doc, err := snapshot.ReadFile(path)
	if err != nil {
		return nil, err
	}
	sp := neurosphere.New(nil)
	if err := sp.Load(ctx, doc); err != nil {
		return nil, err
	}
	return sp, nil
}

func newDescribeCmd() *cobra.Command {
	var (
		snap string
		loc  int
	)
	cmd := &cobra.Command{
		Use:   "describe",
		Short: "Describe a location",
		RunE: func(cmd *cobra.Command, args []string) error {
			sp, err := openSphere(cmd.Context(), snap)
			if err != nil {
				return err
			}
			s, err := sp.Describe(loc)
			if err != nil {
				return err
			}
			_, err = io.WriteString(cmd.OutOrStdout(), s)
			return err
		},
	}
	cmd.Flags().StringVarP(&snap, "snapshot", "s", os.Getenv("SNAPSHOT_PATH"), "world document")
	cmd.Flags().IntVarP(&loc, "location", "l", 0, "location id")
	return cmd
}

func newReachableCmd() *cobra.Command {
	var (
		snap     string
		loc      int
		distance float64
	)
	cmd := &cobra.Command{
		Use:   "reachable",
		Short: "List locations within an angular distance",
		RunE: func(cmd *cobra.Command, args []string) error {
			sp, err := openSphere(cmd.Context(), snap)
			if err != nil {
				return err
			}
			ns, err := sp.Neighbours(loc, distance)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for _, n := range ns {
				fmt.Fprintf(w, "%d\t%s\t%.4f\n", n.LocationID, n.Direction, n.Distance)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&snap, "snapshot", "s", os.Getenv("SNAPSHOT_PATH"), "world document")
	cmd.Flags().IntVarP(&loc, "location", "l", 0, "location id")
	cmd.Flags().Float64VarP(&distance, "distance", "d", 0.1, "angular distance in radians")
	return cmd
}

func newStatsCmd() *cobra.Command {
	var (
		snap    string
		worldID int
		asJSON  bool
	)
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print temperature averages and the biome histogram of a world",
		RunE: func(cmd *cobra.Command, args []string) error {
			sp, err := openSphere(cmd.Context(), snap)
			if err != nil {
				return err
			}
			w, err := sp.World(worldID)
			if err != nil {
				return err
			}
			p, ok := w.(*planet.Planet)
			if !ok {
				return fmt.Errorf("world %d is a %s, not a planet", worldID, w.Type())
			}
			st, err := p.Statistics()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(st)
			}
			fmt.Fprintf(out, "seed: %d\npoints: %d\nplates: %d\n", st.Seed, st.Points, st.Plates)
			fmt.Fprintf(out, "water level: %.3f\nmountain level: %.3f\n", st.WaterLevel, st.MountainLevel)
			fmt.Fprintf(out, "average temperature: %.2f\naverage land temperature: %.2f (%d points)\n",
				st.AvgTemperature, st.AvgLandTemperature, st.LandPoints)
			for _, b := range st.BiomeNames() {
				fmt.Fprintf(out, "  %-24s %d\n", b, st.Biomes[b])
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&snap, "snapshot", "s", os.Getenv("SNAPSHOT_PATH"), "world document")
	cmd.Flags().IntVarP(&worldID, "world", "w", 0, "world id")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	return cmd
}

// openStore：按 PG_* 环境变量连接并确保表结构
func openStore() (*store.Store, error) {
	db, err := utils.OpenPostgresFromEnv()
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	if err := migrate.EnsureSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return store.AttachDB(db), nil
}

func newSaveCmd() *cobra.Command {
	var snap string
	cmd := &cobra.Command{
		Use:   "save",
		Short: "Save every generated world of a document to PostgreSQL",
		RunE: func(cmd *cobra.Command, args []string) error {
			sp, err := openSphere(cmd.Context(), snap)
			if err != nil {
				return err
			}
			doc, err := sp.Document()
			if err != nil {
				return err
			}
			st, err := openStore()
			if err != nil {
				return err
			}
			defer st.Close()
			for _, w := range doc.Worlds {
				if err := st.SaveWorld(cmd.Context(), w); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "saved world %d\n", *w.ID)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&snap, "snapshot", "s", os.Getenv("SNAPSHOT_PATH"), "world document")
	return cmd
}

func newLoadCmd() *cobra.Command {
	var (
		ids []int
		out string
	)
	cmd := &cobra.Command{
		Use:   "load",
		Short: "Export worlds from PostgreSQL into a world document",
		RunE: func(cmd *cobra.Command, args []string) error {
			if out == "" {
				return errors.New("--out is required")
			}
			st, err := openStore()
			if err != nil {
				return err
			}
			defer st.Close()
			if len(ids) == 0 {
				infos, err := st.ListWorlds(cmd.Context())
				if err != nil {
					return err
				}
				for _, wi := range infos {
					ids = append(ids, wi.ID)
				}
			}
			doc := &snapshot.Document{}
			for _, id := range ids {
				w, err := st.LoadWorld(cmd.Context(), id)
				if err != nil {
					return err
				}
				doc.Worlds = append(doc.Worlds, w)
			}
			// 经容器校验点场覆盖后再写出
			sp := neurosphere.New(nil)
			if err := sp.Load(cmd.Context(), doc); err != nil {
				return err
			}
			return snapshot.WriteFile(out, doc)
		},
	}
	cmd.Flags().IntSliceVarP(&ids, "world", "w", nil, "world ids (default: all)")
	cmd.Flags().StringVarP(&out, "out", "o", os.Getenv("SNAPSHOT_PATH"), "world document to write")
	return cmd
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List worlds saved in PostgreSQL",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore()
			if err != nil {
				return err
			}
			defer st.Close()
			infos, err := st.ListWorlds(cmd.Context())
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for _, wi := range infos {
				fmt.Fprintf(w, "%d\t%s\tseed=%d\tpoints=%d\t%s\n", wi.ID, wi.Type, wi.Seed, wi.Points, wi.UpdatedAt.Format("2006-01-02 15:04:05"))
			}
			return nil
		},
	}
}
