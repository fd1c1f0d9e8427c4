package cfg

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"tubevault/internal/domain/keys"
	"tubevault/internal/events"
	"tubevault/internal/models"
	"tubevault/internal/server"
	"tubevault/internal/utils/logging"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// addCmd resolves a video URL and stores it as a pending record.
func addCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <url>",
		Short: "Add a video to the vault by URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := bootstrap()
			if err != nil {
				return err
			}
			defer rt.Close()

			v, err := rt.App.AddVideo(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			logging.S("Added video %q (%s) by %s", v.Title, v.VideoID, v.Channel)
			return nil
		},
	}
}

// listCmd prints all stored videos, newest first.
func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored videos",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := bootstrap()
			if err != nil {
				return err
			}
			defer rt.Close()

			videos, err := rt.App.ListVideos(cmd.Context())
			if err != nil {
				return err
			}
			printVideos(videos)
			return nil
		},
	}
}

// searchCmd searches stored records, or the platform with --remote.
func searchCmd() *cobra.Command {
	searchCmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search stored videos, or the platform with --remote",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := bootstrap()
			if err != nil {
				return err
			}
			defer rt.Close()

			if viper.GetBool(keys.RemoteSearch) {
				results, err := rt.App.SearchRemote(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				printSearchResults(results)
				return nil
			}

			videos, err := rt.App.SearchLocal(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printVideos(videos)
			return nil
		},
	}

	searchCmd.Flags().Bool(keys.RemoteSearch, false, "Search the platform instead of the local vault")
	if err := viper.BindPFlag(keys.RemoteSearch, searchCmd.Flags().Lookup(keys.RemoteSearch)); err != nil {
		logging.E("Failed to bind remote search flag: %v", err)
	}

	return searchCmd
}

// downloadCmd downloads a stored video's media, printing progress events.
func downloadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "download <video-id>",
		Short: "Download a stored video's media file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := bootstrap()
			if err != nil {
				return err
			}
			defer rt.Close()

			sub, cancelSub := rt.App.Subscribe()
			defer cancelSub()
			go func() {
				for e := range sub {
					if e.Kind == events.KindProgress {
						logging.I("Video %q: %d%%", e.VideoID, e.Percentage)
					}
				}
			}()

			result, err := rt.App.Download(cmd.Context(), args[0])
			if err != nil {
				if errors.Is(err, context.Canceled) {
					logging.W("Download of %q interrupted", args[0])
					return nil
				}
				return err
			}
			logging.S("Downloaded %q to %q (%d bytes)", args[0], result.FilePath, result.FileSize)
			return nil
		},
	}
}

// deleteCmd removes a record plus its file and thumbnail.
func deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <video-id>",
		Short: "Delete a video entry and its downloaded file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := bootstrap()
			if err != nil {
				return err
			}
			defer rt.Close()

			if err := rt.App.DeleteVideo(cmd.Context(), args[0]); err != nil {
				return err
			}
			logging.S("Successfully deleted video %q", args[0])
			return nil
		},
	}
}

// serveCmd runs the HTTP API and SSE event stream.
func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the tubevault HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := bootstrap()
			if err != nil {
				return err
			}
			defer rt.Close()

			return server.StartServer(cmd.Context(), rt.App, viper.GetString(keys.ServerPort))
		},
	}
}

// printVideos renders stored records as an aligned table.
func printVideos(videos []*models.Video) {
	if len(videos) == 0 {
		fmt.Println("No videos found.")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tCHANNEL\tDURATION\tSTATUS\tPROGRESS")
	for _, v := range videos {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d%%\n",
			v.VideoID, v.Title, v.Channel, formatDuration(v.Duration), v.DownloadStatus, v.DownloadProgress)
	}
	if err := w.Flush(); err != nil {
		logging.E("Failed to flush output: %v", err)
	}
}

// printSearchResults renders ephemeral platform results.
func printSearchResults(results []*models.SearchResult) {
	if len(results) == 0 {
		fmt.Println("No results found.")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tCHANNEL\tDURATION")
	for _, res := range results {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			res.VideoID, res.Title, res.Channel, formatDuration(res.Duration))
	}
	if err := w.Flush(); err != nil {
		logging.E("Failed to flush output: %v", err)
	}
}

// formatDuration renders seconds as h:mm:ss or m:ss.
func formatDuration(seconds int64) string {
	d := time.Duration(seconds) * time.Second
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
