package main

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"tessera/internal/config"
	"tessera/internal/iiif"
	"tessera/internal/store"
)

func newManifestCommand(ctx *commandContext) *cobra.Command {
	var legacy bool

	cmd := &cobra.Command{
		Use:   "manifest <record-id>",
		Short: "Emit a IIIF Presentation manifest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			recordID, err := parseID(args[0])
			if err != nil {
				return err
			}
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				svc := iiif.NewService(cfg, st, ctx.ensureLogger(), http.DefaultClient)

				var manifest map[string]any
				if legacy {
					manifest, err = svc.LegacyManifest(cmd.Context(), recordID)
				} else {
					manifest, err = svc.Manifest(cmd.Context(), recordID)
				}
				if err != nil {
					return err
				}
				if manifest == nil {
					return fmt.Errorf("record %d has no presentable assets", recordID)
				}
				return writeJSON(cmd, manifest)
			})
		},
	}

	cmd.Flags().BoolVar(&legacy, "v2", false, "Emit a Presentation 2.1 manifest")

	cmd.AddCommand(newManifestSearchCommand(ctx))
	cmd.AddCommand(newManifestImageCommand(ctx))
	return cmd
}

func newManifestImageCommand(ctx *commandContext) *cobra.Command {
	var legacy bool

	cmd := &cobra.Command{
		Use:   "image <identifier>",
		Short: "Emit a manifest for a bare image server identifier",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				svc := iiif.NewService(cfg, st, ctx.ensureLogger(), http.DefaultClient)

				var manifest map[string]any
				if legacy {
					manifest = svc.LegacyImageManifest(cmd.Context(), args[0])
				} else {
					manifest = svc.ImageManifest(cmd.Context(), args[0])
				}
				return writeJSON(cmd, manifest)
			})
		},
	}

	cmd.Flags().BoolVar(&legacy, "v2", false, "Emit a Presentation 2.1 manifest")
	return cmd
}

func newManifestSearchCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "search <record-id> <query>",
		Short: "Run a IIIF Content Search over a record",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			recordID, err := parseID(args[0])
			if err != nil {
				return err
			}
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				svc := iiif.NewService(cfg, st, ctx.ensureLogger(), http.DefaultClient)
				result, err := svc.ContentSearch(cmd.Context(), recordID, args[1])
				if err != nil {
					return err
				}
				return writeJSON(cmd, result)
			})
		},
	}
}

func newCollectionCommand(ctx *commandContext) *cobra.Command {
	collectionCmd := &cobra.Command{
		Use:   "collection",
		Short: "Curated record collections",
	}

	collectionCmd.AddCommand(newCollectionAddCommand(ctx))
	collectionCmd.AddCommand(newCollectionItemCommand(ctx))
	collectionCmd.AddCommand(newCollectionManifestCommand(ctx))

	return collectionCmd
}

func newCollectionAddCommand(ctx *commandContext) *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				collection, err := st.CreateCollection(cmd.Context(), &store.Collection{
					Name:        args[0],
					Description: description,
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created collection #%d (%s)\n", collection.ID, collection.Name)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&description, "description", "", "Collection description")
	return cmd
}

func newCollectionItemCommand(ctx *commandContext) *cobra.Command {
	var order int

	cmd := &cobra.Command{
		Use:   "item <collection-id> <record-id>",
		Short: "Place a record in a collection",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			collectionID, err := parseID(args[0])
			if err != nil {
				return err
			}
			recordID, err := parseID(args[1])
			if err != nil {
				return err
			}
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				if err := st.AddCollectionItem(cmd.Context(), collectionID, recordID, order); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added record #%d to collection #%d\n", recordID, collectionID)
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&order, "order", 0, "Display position within the collection")
	return cmd
}

func newCollectionManifestCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "manifest <collection-id>",
		Short: "Emit a IIIF collection document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			collectionID, err := parseID(args[0])
			if err != nil {
				return err
			}
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				svc := iiif.NewService(cfg, st, ctx.ensureLogger(), http.DefaultClient)
				collection, err := svc.Collection(cmd.Context(), collectionID)
				if err != nil {
					return err
				}
				return writeJSON(cmd, collection)
			})
		},
	}
}
