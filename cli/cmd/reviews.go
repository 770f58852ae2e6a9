package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"carereviews/api/server"
	"carereviews/cli/api"
	"carereviews/core/review"
	"carereviews/types/ids"
)

var errNotCompliant = errors.New("review would be rejected")

// readSubmission reads one submission from path, or stdin when path is "-".
func readSubmission(cmd *cobra.Command, path string) (review.Submission, error) {
	var r io.Reader = cmd.InOrStdin()
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return review.Submission{}, err
		}
		defer f.Close()
		r = f
	}
	var sub review.Submission
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&sub); err != nil {
		return review.Submission{}, fmt.Errorf("invalid submission: %w", err)
	}
	return sub, nil
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

var checkRemote bool

var checkCmd = &cobra.Command{
	Use:   "check <file|->",
	Short: "Sanitize and validate a submission without publishing it",
	Long: "Runs de-identification, redaction, schema validation and the compliance scan " +
		"locally (or on the server with --remote) and prints the resulting record.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sub, err := readSubmission(cmd, args[0])
		if err != nil {
			return err
		}

		var resp server.CheckResponse
		if checkRemote {
			if resp, err = newClient().CheckReview(sub); err != nil {
				return err
			}
		} else {
			resp = localCheck(sub, time.Now())
		}
		if err := printJSON(cmd, resp); err != nil {
			return err
		}
		if !resp.Compliant {
			return errNotCompliant
		}
		return nil
	},
}

func localCheck(sub review.Submission, now time.Time) server.CheckResponse {
	rec, err := review.Sanitize(sub, ids.NewReviewID(), now)
	return server.NewCheckResponse(rec, err)
}

var submitCmd = &cobra.Command{
	Use:   "submit <file|->",
	Short: "Submit a review to the service",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sub, err := readSubmission(cmd, args[0])
		if err != nil {
			return err
		}
		rec, err := newClient().SubmitReview(sub)
		if err != nil {
			return err
		}
		return printJSON(cmd, rec)
	},
}

var listOpts api.ListOptions

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List published reviews",
	RunE: func(cmd *cobra.Command, args []string) error {
		reviews, err := newClient().ListReviews(listOpts)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, r := range reviews {
			fmt.Fprintf(out, "%s  %s  %-5s %-4s %d/5  %s\n", r.Date, r.ReviewID, r.PatientInitials, r.Age, r.Rating, r.Condition)
		}
		fmt.Fprintf(out, "%d review(s)\n", len(reviews))
		return nil
	},
}

var getCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one review",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rec, err := newClient().GetReview(args[0])
		if err != nil {
			return err
		}
		return printJSON(cmd, rec)
	},
}

var helpfulCmd = &cobra.Command{
	Use:   "helpful <id>",
	Short: "Mark a review as helpful",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rec, err := newClient().MarkHelpful(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s helpful: %d\n", rec.ReviewID, rec.HelpfulCount)
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a review (moderator)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := newClient().DeleteReview(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
		return nil
	},
}

func init() {
	checkCmd.Flags().BoolVar(&checkRemote, "remote", false, "run the check on the server instead of locally")

	addListFlags(listCmd, &listOpts)

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(submitCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(helpfulCmd)
	rootCmd.AddCommand(deleteCmd)
}

func addListFlags(c *cobra.Command, opts *api.ListOptions) {
	c.Flags().StringVar(&opts.Condition, "condition", "", "only reviews for this condition")
	c.Flags().IntVar(&opts.MinRating, "min-rating", 0, "only reviews rated at least this")
	c.Flags().IntVar(&opts.Limit, "limit", 0, "maximum number of reviews")
}
