// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package commands

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"blogicum/internal/admin"
	"blogicum/internal/models"
	"blogicum/internal/query"
	"blogicum/internal/slug"
	"blogicum/internal/storage"
	"blogicum/internal/store"
)

var (
	// category add flags
	categorySlug        string
	categoryDescription string
	categoryHidden      bool
	categoryDraft       bool

	// location add flags
	locationDraft bool

	// user create flags
	userEmail     string
	userPassword  string
	userSuperuser bool

	// posts report flags
	reportLimit     uint64
	reportPublished bool
	reportSearch    string
)

// adminCmd groups the content management commands.
var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Manage categories, locations and accounts",
	Long: `Manage the reference data and accounts of the blog.

Subcommands:
  category  - add, list, delete, hide or show categories
  location  - add, list or delete locations
  user      - create and list accounts, reset 2FA
  posts     - report on and moderate posts
  comments  - list and delete comments`,
}

// withDB opens the database for one admin command.
func withDB(cmd *cobra.Command, fn func(db *sql.DB) error) error {
	db, err := openDB(cmd.Context())
	if err != nil {
		return err
	}
	defer db.Close()
	return fn(db)
}

var categoryCmd = &cobra.Command{
	Use:   "category",
	Short: "Manage categories",
}

var categoryAddCmd = &cobra.Command{
	Use:   "add TITLE",
	Short: "Create a category",
	Long: `Create a category. The slug defaults to a transliteration of the title.

Examples:
  blogicum admin category add "Путешествия"
  blogicum admin category add Travel --slug travel --description "Trips and places"
  blogicum admin category add Drafts --hidden`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		title := strings.TrimSpace(args[0])
		s := categorySlug
		if s == "" {
			s = slug.Generate(title)
		}
		if title == "" || !slug.Valid(s) {
			return fmt.Errorf("invalid category: title %q, slug %q (latin letters, digits, - and _ only)", title, s)
		}

		return withDB(cmd, func(db *sql.DB) error {
			c, err := store.NewCategoryStore(db).Create(&models.Category{
				Title:       title,
				Slug:        s,
				Description: categoryDescription,
				IsPublished: !categoryDraft,
				IsVisible:   !categoryHidden,
			})
			if errors.Is(err, store.ErrDuplicate) {
				return fmt.Errorf("category %q already exists", s)
			}
			if err != nil {
				return err
			}
			cmd.Printf("created category %s (id %d)\n", c.Slug, c.ID)
			return nil
		})
	},
}

var categoryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List categories",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(cmd, func(db *sql.DB) error {
			cats, err := store.NewCategoryStore(db).List()
			if err != nil {
				return err
			}
			return admin.Categories(cmd.OutOrStdout(), cats, cfg.AdminEmptyValue)
		})
	},
}

var categoryDeleteCmd = &cobra.Command{
	Use:   "delete SLUG",
	Short: "Delete a category; its posts stay, uncategorised",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(cmd, func(db *sql.DB) error {
			ok, err := store.NewCategoryStore(db).Delete(args[0])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("no category %q", args[0])
			}
			cmd.Printf("deleted category %s\n", args[0])
			return nil
		})
	},
}

// visibilityCmd builds the hide and show commands.
func visibilityCmd(use, short string, visible bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " SLUG",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(cmd, func(db *sql.DB) error {
				ok, err := store.NewCategoryStore(db).SetVisible(args[0], visible)
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("no category %q", args[0])
				}
				cmd.Printf("category %s visible=%v\n", args[0], visible)
				return nil
			})
		},
	}
}

var locationCmd = &cobra.Command{
	Use:   "location",
	Short: "Manage locations",
}

var locationAddCmd = &cobra.Command{
	Use:   "add NAME",
	Short: "Create a location",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := strings.TrimSpace(args[0])
		if name == "" {
			return errors.New("location name is required")
		}
		return withDB(cmd, func(db *sql.DB) error {
			l, err := store.NewLocationStore(db).Create(name, !locationDraft)
			if err != nil {
				return err
			}
			cmd.Printf("created location %q (id %d)\n", l.Name, l.ID)
			return nil
		})
	},
}

var locationListCmd = &cobra.Command{
	Use:   "list",
	Short: "List locations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(cmd, func(db *sql.DB) error {
			locs, err := store.NewLocationStore(db).List(false)
			if err != nil {
				return err
			}
			return admin.Locations(cmd.OutOrStdout(), locs, cfg.AdminEmptyValue)
		})
	},
}

var locationDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a location; its posts stay, without one",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID("location", args[0])
		if err != nil {
			return err
		}
		return withDB(cmd, func(db *sql.DB) error {
			ok, err := store.NewLocationStore(db).Delete(id)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("no location %d", id)
			}
			cmd.Printf("deleted location %d\n", id)
			return nil
		})
	},
}

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage accounts",
}

var userCreateCmd = &cobra.Command{
	Use:   "create USERNAME",
	Short: "Create an account",
	Long: `Create an account from the shell, optionally as a superuser.

Examples:
  blogicum admin user create editor --password 's3cret pass' --superuser`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(userPassword) < 8 {
			return errors.New("--password must be at least 8 characters")
		}
		return withDB(cmd, func(db *sql.DB) error {
			u, err := store.NewUserStore(db).Create(args[0], userEmail, userPassword, userSuperuser)
			if errors.Is(err, store.ErrDuplicate) {
				return fmt.Errorf("user %q already exists", args[0])
			}
			if err != nil {
				return err
			}
			cmd.Printf("created user %s (superuser=%v)\n", u.Username, u.IsSuperuser)
			return nil
		})
	},
}

var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "List accounts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(cmd, func(db *sql.DB) error {
			users, err := store.NewUserStore(db).List()
			if err != nil {
				return err
			}
			return admin.Users(cmd.OutOrStdout(), users, cfg.AdminEmptyValue)
		})
	},
}

var userReset2FACmd = &cobra.Command{
	Use:   "reset-2fa USERNAME",
	Short: "Turn off two-factor authentication for a locked-out user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(cmd, func(db *sql.DB) error {
			users := store.NewUserStore(db)
			u, err := users.FindByUsername(args[0])
			if err != nil {
				return err
			}
			if u == nil {
				return fmt.Errorf("no user %q", args[0])
			}
			if err := users.ResetTOTP(u.ID); err != nil {
				return err
			}
			cmd.Printf("2FA reset for %s\n", u.Username)
			return nil
		})
	},
}

var postsCmd = &cobra.Command{
	Use:   "posts",
	Short: "Report on and moderate posts",
}

var postsReportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print posts with their author, category and status",
	Long: `Print posts newest first.

Examples:
  blogicum admin posts report --limit 20
  blogicum admin posts report --published=false
  blogicum admin posts report --search "Москва"`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		f := query.ReportFilter{Limit: reportLimit, Search: reportSearch}
		if cmd.Flags().Changed("published") {
			f.Published = &reportPublished
		}
		return withDB(cmd, func(db *sql.DB) error {
			posts, err := store.NewPostStore(db).Report(f)
			if err != nil {
				return err
			}
			return admin.PostReport(cmd.OutOrStdout(), posts, cfg.AdminEmptyValue, time.Now())
		})
	},
}

// parseID reads a numeric row ID from the command line.
func parseID(what, arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s id %q", what, arg)
	}
	return id, nil
}

// postUpdateCmd builds a command that changes one field of a post. set
// receives the post ID and the remaining arguments and returns what it
// did, or false when the post does not exist.
func postUpdateCmd(use, short string, args cobra.PositionalArgs, set func(db *sql.DB, id int64, rest []string) (string, bool, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("post", args[0])
			if err != nil {
				return err
			}
			return withDB(cmd, func(db *sql.DB) error {
				done, ok, err := set(db, id, args[1:])
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("no post %d", id)
				}
				cmd.Printf("post %d: %s\n", id, done)
				return nil
			})
		},
	}
}

func setPublished(published bool) func(db *sql.DB, id int64, _ []string) (string, bool, error) {
	return func(db *sql.DB, id int64, _ []string) (string, bool, error) {
		ok, err := store.NewPostStore(db).SetPublished(id, published)
		return fmt.Sprintf("published=%v", published), ok, err
	}
}

var postsSetCategoryCmd = postUpdateCmd("set-category ID [SLUG]",
	"File a post under a category; without SLUG the post is uncategorised",
	cobra.RangeArgs(1, 2),
	func(db *sql.DB, id int64, rest []string) (string, bool, error) {
		if len(rest) == 0 {
			ok, err := store.NewPostStore(db).SetCategory(id, nil)
			return "category cleared", ok, err
		}
		cat, err := store.NewCategoryStore(db).FindBySlug(rest[0])
		if err != nil {
			return "", false, err
		}
		if cat == nil {
			return "", false, fmt.Errorf("no category %q", rest[0])
		}
		ok, err := store.NewPostStore(db).SetCategory(id, &cat.ID)
		return "category " + cat.Slug, ok, err
	})

var postsSetLocationCmd = postUpdateCmd("set-location ID [LOCATION_ID]",
	"Move a post to a location; without LOCATION_ID the location is cleared",
	cobra.RangeArgs(1, 2),
	func(db *sql.DB, id int64, rest []string) (string, bool, error) {
		if len(rest) == 0 {
			ok, err := store.NewPostStore(db).SetLocation(id, nil)
			return "location cleared", ok, err
		}
		locID, err := parseID("location", rest[0])
		if err != nil {
			return "", false, err
		}
		loc, err := store.NewLocationStore(db).FindByID(locID)
		if err != nil {
			return "", false, err
		}
		if loc == nil {
			return "", false, fmt.Errorf("no location %d", locID)
		}
		ok, err := store.NewPostStore(db).SetLocation(id, &loc.ID)
		return fmt.Sprintf("location %q", loc.Name), ok, err
	})

var postsSetAuthorCmd = postUpdateCmd("set-author ID USERNAME",
	"Hand a post over to another user",
	cobra.ExactArgs(2),
	func(db *sql.DB, id int64, rest []string) (string, bool, error) {
		u, err := store.NewUserStore(db).FindByUsername(rest[0])
		if err != nil {
			return "", false, err
		}
		if u == nil {
			return "", false, fmt.Errorf("no user %q", rest[0])
		}
		ok, err := store.NewPostStore(db).SetAuthor(id, u.ID)
		return "author " + u.Username, ok, err
	})

var postsDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a post with its comments and image",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID("post", args[0])
		if err != nil {
			return err
		}
		return withDB(cmd, func(db *sql.DB) error {
			posts := store.NewPostStore(db)
			p, err := posts.FindByID(id)
			if err != nil {
				return err
			}
			if p == nil {
				return fmt.Errorf("no post %d", id)
			}
			if _, err := posts.Delete(id); err != nil {
				return err
			}
			if p.Image != nil {
				blobs, _, err := openBlobs()
				if err != nil {
					return err
				}
				if err := storage.NewImages(blobs).Remove(cmd.Context(), *p.Image); err != nil {
					slog.Warn("failed to remove post image", "key", *p.Image, "error", err)
				}
			}
			cmd.Printf("deleted post %d %q\n", id, p.Title)
			return nil
		})
	},
}

var commentsCmd = &cobra.Command{
	Use:   "comments",
	Short: "List and delete comments",
}

var commentsListCmd = &cobra.Command{
	Use:   "list POST_ID",
	Short: "List a post's comments, oldest first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		postID, err := parseID("post", args[0])
		if err != nil {
			return err
		}
		return withDB(cmd, func(db *sql.DB) error {
			comments, err := store.NewCommentStore(db).ListByPost(postID)
			if err != nil {
				return err
			}
			return admin.Comments(cmd.OutOrStdout(), comments, cfg.AdminEmptyValue)
		})
	},
}

var commentsDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a comment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID("comment", args[0])
		if err != nil {
			return err
		}
		return withDB(cmd, func(db *sql.DB) error {
			ok, err := store.NewCommentStore(db).Delete(id)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("no comment %d", id)
			}
			cmd.Printf("deleted comment %d\n", id)
			return nil
		})
	},
}

func init() {
	categoryAddCmd.Flags().StringVar(&categorySlug, "slug", "", "URL slug (default: derived from the title)")
	categoryAddCmd.Flags().StringVar(&categoryDescription, "description", "", "Category description")
	categoryAddCmd.Flags().BoolVar(&categoryHidden, "hidden", false, "Hide the category's posts from public feeds")
	categoryAddCmd.Flags().BoolVar(&categoryDraft, "unpublished", false, "Create the category unpublished")
	categoryCmd.AddCommand(categoryAddCmd, categoryListCmd, categoryDeleteCmd,
		visibilityCmd("hide", "Hide a category's posts from public feeds", false),
		visibilityCmd("show", "Show a category's posts in public feeds again", true),
	)

	locationAddCmd.Flags().BoolVar(&locationDraft, "unpublished", false, "Create the location unpublished")
	locationCmd.AddCommand(locationAddCmd, locationListCmd, locationDeleteCmd)

	userCreateCmd.Flags().StringVar(&userEmail, "email", "", "Email address")
	userCreateCmd.Flags().StringVar(&userPassword, "password", "", "Password (at least 8 characters)")
	userCreateCmd.Flags().BoolVar(&userSuperuser, "superuser", false, "Grant superuser rights")
	userCreateCmd.MarkFlagRequired("password")
	userCmd.AddCommand(userCreateCmd, userListCmd, userReset2FACmd)

	postsReportCmd.Flags().Uint64Var(&reportLimit, "limit", 0, "Show only the newest N posts (0 for all)")
	postsReportCmd.Flags().BoolVar(&reportPublished, "published", false, "Show only published posts, or only drafts with --published=false")
	postsReportCmd.Flags().StringVar(&reportSearch, "search", "", "Show only posts whose title contains this text")
	postsCmd.AddCommand(postsReportCmd, postsDeleteCmd,
		postUpdateCmd("publish ID", "Publish a post", cobra.ExactArgs(1), setPublished(true)),
		postUpdateCmd("unpublish ID", "Turn a post back into a draft", cobra.ExactArgs(1), setPublished(false)),
		postsSetCategoryCmd, postsSetLocationCmd, postsSetAuthorCmd,
	)

	commentsCmd.AddCommand(commentsListCmd, commentsDeleteCmd)

	adminCmd.AddCommand(categoryCmd, locationCmd, userCmd, postsCmd, commentsCmd)
	rootCmd.AddCommand(adminCmd)
}
