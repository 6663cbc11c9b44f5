package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/siherrmann/urlrag"
	"github.com/siherrmann/urlrag/database"
	"github.com/siherrmann/urlrag/helper"
	"github.com/siherrmann/urlrag/model"
	"github.com/spf13/cobra"
)

func main() {
	if err := rootCMD().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCMD() *cobra.Command {
	var configPath string
	var collection string

	root := &cobra.Command{
		Use:          "urlrag",
		Short:        "Ask questions about web pages",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ./urlrag.json)")
	root.PersistentFlags().StringVar(&collection, "collection", "", "collection to use instead of the configured one")

	newRag := func(cmd *cobra.Command) (*urlrag.Rag, error) {
		err := helper.LoadEnv()
		if err != nil {
			return nil, err
		}

		config, err := loadConfig(configPath)
		if err != nil {
			return nil, err
		}
		if collection != "" {
			config.CollectionName = collection
		}

		return urlrag.NewRag(config, nil)
	}

	root.AddCommand(ingestCMD(newRag), askCMD(newRag), searchCMD(newRag), chunkCMD(newRag), deleteCMD(newRag), indexCMD(newRag))
	return root
}

type ragFactory func(cmd *cobra.Command) (*urlrag.Rag, error)

func ingestCMD(newRag ragFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "ingest URL...",
		Short: "Replace the collection with the content of the given pages",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rag, err := newRag(cmd)
			if err != nil {
				return err
			}
			defer rag.Close()

			out := cmd.OutOrStdout()
			count, err := rag.ProcessURLs(cmd.Context(), args, func(stage model.IngestStage) {
				fmt.Fprintf(out, "%s...\n", stage)
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "Stored %d chunks from %d pages\n", count, len(args))
			return nil
		},
	}
}

func askCMD(newRag ragFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "ask QUESTION",
		Short: "Answer a question from the ingested pages",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rag, err := initializedRag(cmd.Context(), cmd, newRag)
			if err != nil {
				return err
			}
			defer rag.Close()

			result, err := rag.GenerateAnswer(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, color.New(color.Bold).Sprint("Answer"))
			fmt.Fprintln(out, result.Answer)
			sources := result.SourceList()
			if len(sources) > 0 {
				fmt.Fprintln(out, color.New(color.Bold).Sprint("Sources"))
				for _, source := range sources {
					fmt.Fprintln(out, source)
				}
			}
			return nil
		},
	}
}

func searchCMD(newRag ragFactory) *cobra.Command {
	var k int

	search := &cobra.Command{
		Use:   "search QUERY",
		Short: "Show the stored chunks most similar to the query",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rag, err := initializedRag(cmd.Context(), cmd, newRag)
			if err != nil {
				return err
			}
			defer rag.Close()

			chunks, err := rag.SimilaritySearch(cmd.Context(), strings.Join(args, " "), k)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for i, chunk := range chunks {
				fmt.Fprintf(out, "%s %s\n", color.CyanString("%d.", i+1), chunk.Source)
				if chunk.Similarity != nil {
					fmt.Fprintf(out, "   similarity: %.4f\n", *chunk.Similarity)
				}
				fmt.Fprintf(out, "   %s\n", chunk.Content)
			}
			return nil
		},
	}
	search.Flags().IntVarP(&k, "k", "k", 2, "number of chunks")

	return search
}

func chunkCMD(newRag ragFactory) *cobra.Command {
	chunk := &cobra.Command{
		Use:   "chunk",
		Short: "Show or delete a stored chunk",
	}

	show := &cobra.Command{
		Use:   "show RID",
		Short: "Show a stored chunk",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rid, err := uuid.Parse(args[0])
			if err != nil {
				return helper.NewError("parse chunk rid", err)
			}

			rag, err := initializedRag(cmd.Context(), cmd, newRag)
			if err != nil {
				return err
			}
			defer rag.Close()

			c, err := rag.Chunk(cmd.Context(), rid)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s\n", color.CyanString("source:"), c.Source)
			fmt.Fprintf(out, "%s %d\n", color.CyanString("index:"), c.ChunkIndex)
			fmt.Fprintln(out, c.Content)
			return nil
		},
	}

	del := &cobra.Command{
		Use:   "delete RID",
		Short: "Delete a stored chunk",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rid, err := uuid.Parse(args[0])
			if err != nil {
				return helper.NewError("parse chunk rid", err)
			}

			rag, err := initializedRag(cmd.Context(), cmd, newRag)
			if err != nil {
				return err
			}
			defer rag.Close()

			err = rag.DeleteChunk(cmd.Context(), rid)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Deleted chunk %s\n", rid)
			return nil
		},
	}

	chunk.AddCommand(show, del)
	return chunk
}

func deleteCMD(newRag ragFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "delete COLLECTION",
		Short: "Delete a collection with all its chunks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rag, err := initializedRag(cmd.Context(), cmd, newRag)
			if err != nil {
				return err
			}
			defer rag.Close()

			err = rag.DeleteCollection(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Deleted collection %s\n", args[0])
			return nil
		},
	}
}

func indexCMD(newRag ragFactory) *cobra.Command {
	var params database.IndexParams

	index := &cobra.Command{
		Use:       "index hnsw|ivfflat",
		Short:     "Rebuild the vector index of the stored chunks",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{database.IndexTypeHNSW, database.IndexTypeIVFFlat},
		RunE: func(cmd *cobra.Command, args []string) error {
			rag, err := initializedRag(cmd.Context(), cmd, newRag)
			if err != nil {
				return err
			}
			defer rag.Close()

			err = rag.ChangeIndexType(cmd.Context(), args[0], params)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Rebuilt %s index\n", args[0])
			return nil
		},
	}
	index.Flags().IntVar(&params.M, "m", 0, "hnsw: max connections per layer (default 16)")
	index.Flags().IntVar(&params.EfConstruction, "ef-construction", 0, "hnsw: candidate list size while building (default 64)")
	index.Flags().IntVar(&params.Lists, "lists", 0, "ivfflat: number of lists (default 100)")

	return index
}

func initializedRag(ctx context.Context, cmd *cobra.Command, newRag ragFactory) (*urlrag.Rag, error) {
	rag, err := newRag(cmd)
	if err != nil {
		return nil, err
	}

	err = rag.Initialize(ctx)
	if err != nil {
		rag.Close()
		return nil, err
	}
	return rag, nil
}
