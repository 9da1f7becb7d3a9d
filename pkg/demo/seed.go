// Package demo seeds a SQLite database with synthetic posts and comments
// so search and status can be tried without Reddit credentials.
package demo

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/papercomputeco/lurker/pkg/reddit"
	"github.com/papercomputeco/lurker/pkg/storage/sqlite"
)

const DemoSQLitePath = "lurker.demo.sqlite"

type seedPost struct {
	post     reddit.Post
	comments []reddit.Comment
}

// Seed writes the demo corpus into a SQLite database at path. Returns the
// number of posts and comments inserted.
func Seed(ctx context.Context, path string, overwrite bool) (int, int, error) {
	if err := prepareSQLitePath(path, overwrite); err != nil {
		return 0, 0, err
	}

	store, err := sqlite.NewStore(sqlite.Config{Path: path})
	if err != nil {
		return 0, 0, err
	}
	defer func() { _ = store.Close() }()

	if !overwrite {
		hasData, err := hasExistingData(ctx, store)
		if err != nil {
			return 0, 0, err
		}
		if hasData {
			return 0, 0, fmt.Errorf("sqlite database already has data: %s (use --overwrite)", path)
		}
	}

	seeds := demoCorpus(time.Now())

	posts := make([]reddit.Post, 0, len(seeds))
	comments := make([]reddit.Comment, 0, 2*len(seeds))
	for _, seed := range seeds {
		posts = append(posts, seed.post)
		comments = append(comments, seed.comments...)
	}

	postCount, err := store.InsertPosts(ctx, posts)
	if err != nil {
		return 0, 0, err
	}

	commentCount, err := store.InsertComments(ctx, comments)
	if err != nil {
		return postCount, 0, err
	}

	return postCount, commentCount, nil
}

func prepareSQLitePath(path string, overwrite bool) error {
	if isInMemorySQLite(path) {
		return nil
	}

	if info, err := os.Stat(path); err == nil {
		if info.IsDir() {
			return fmt.Errorf("sqlite path is a directory: %s", path)
		}
		if overwrite {
			if err := os.Remove(path); err != nil {
				return fmt.Errorf("remove sqlite database: %w", err)
			}
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat sqlite database: %w", err)
	}

	parent := filepath.Dir(path)
	if parent == "." || parent == "" {
		return nil
	}

	if err := os.MkdirAll(parent, 0o755); err != nil {
		return fmt.Errorf("create sqlite directory: %w", err)
	}

	return nil
}

func hasExistingData(ctx context.Context, store *sqlite.Store) (bool, error) {
	count, err := store.CountPosts(ctx, "")
	if err != nil {
		return false, fmt.Errorf("check sqlite database: %w", err)
	}

	return count > 0, nil
}

func isInMemorySQLite(path string) bool {
	trimmed := strings.TrimSpace(path)
	if trimmed == ":memory:" {
		return true
	}

	return strings.HasPrefix(trimmed, "file::memory:")
}

func demoCorpus(now time.Time) []seedPost {
	var seeds []seedPost
	seeds = append(seeds, salesPosts(now)...)
	seeds = append(seeds, sdrPosts(now)...)
	return seeds
}

func salesPosts(now time.Time) []seedPost {
	return []seedPost{
		{
			post: post("1demo01", "sales", "throwaway_ae_2025",
				"Our CRM is actively making my job harder",
				"Every stage change is six clicks. Logging a call takes longer than the call did. I spend my Friday afternoons cleaning up duplicate contacts the import tool created. Does anyone actually like their CRM or do we all just tolerate it?",
				847, 312, now.Add(-6*time.Hour), 0.96),
			comments: []reddit.Comment{
				comment("demc01", "1demo01", "sales_vet_20yrs",
					"The CRM is for your manager, not for you. Once you accept that, the clicking hurts less.",
					412, now.Add(-5*time.Hour)),
				comment("demc02", "1demo01", "ops_gal",
					"Half of this is config debt, not the tool. Ask your admin why stage changes need six clicks.",
					198, now.Add(-4*time.Hour)),
			},
		},
		{
			post: post("1demo02", "sales", "quota_crusher_q3",
				"What CRM do you actually like? Genuine question",
				"Switching off our current system at the end of the quarter. Team of 11 AEs, mid-market SaaS. I have heard every vendor pitch; I want to hear from people who live in the thing daily.",
				523, 287, now.Add(-16*time.Hour), 0.94),
			comments: []reddit.Comment{
				comment("demc03", "1demo02", "mid_market_mike",
					"We moved to a lighter tool and the reps actually update it now. Feature lists lie; adoption is everything.",
					156, now.Add(-15*time.Hour)),
			},
		},
		{
			post: post("1demo03", "sales", "burned_out_bdm",
				"Spent 2 hours on manual data entry today. There has to be a better way",
				"Copying emails into the CRM, re-typing phone numbers from LinkedIn, updating close dates one by one. I was hired to sell. What tools are you all using to automate the admin side?",
				634, 198, now.Add(-28*time.Hour), 0.95),
			comments: []reddit.Comment{
				comment("demc04", "1demo03", "automate_everything",
					"Calendar sync plus an email plugin killed about 80% of my data entry. The rest I batch on Friday.",
					233, now.Add(-26*time.Hour)),
				comment("demc05", "1demo03", "skeptical_sam",
					"Careful with auto-logging tools, ours wrote meeting notes to the wrong accounts for a month before anyone noticed.",
					97, now.Add(-25*time.Hour)),
			},
		},
		{
			post: post("1demo04", "sales", "honest_reviews_only",
				"Switched our team off the big-name CRM after 6 years. Honest retro",
				"Migration took a quarter and hurt. But: reps log activity without being chased, pipeline reviews run off live data, and we cut our tooling bill by 40%. Ask me anything about the move.",
				1102, 445, now.Add(-2*24*time.Hour), 0.97),
			comments: []reddit.Comment{
				comment("demc06", "1demo04", "cfo_whisperer",
					"The 40% number gets thrown around a lot. Did that include the migration consultants?",
					301, now.Add(-47*time.Hour)),
			},
		},
		{
			post: post("1demo05", "sales", "renewals_rachel",
				"Renewal season chaos: how do you track 200 accounts without losing your mind?",
				"Spreadsheet broke at 150 rows of conditional formatting. CRM reports are 30 clicks deep. I need renewal dates, usage trend, and champion status on one screen. What is everyone using?",
				289, 134, now.Add(-3*24*time.Hour), 0.91),
		},
		{
			post: post("1demo06", "sales", "tool_fatigue_tom",
				"Sales tool alternatives that are not another 50k a year platform",
				"Leadership keeps buying point solutions. We have nine logins and none of them talk to each other. Looking for consolidation stories: what did you cut, what did you keep, what broke?",
				467, 221, now.Add(-4*24*time.Hour), 0.93),
			comments: []reddit.Comment{
				comment("demc07", "1demo06", "consolidation_carl",
					"We cut six tools down to three. The sequencer and the dialer merged into one product and nobody misses the rest.",
					145, now.Add(-95*time.Hour)),
			},
		},
	}
}

func sdrPosts(now time.Time) []seedPost {
	return []seedPost{
		{
			post: post("1demo07", "SDRs", "dial_tone_dan",
				"Cold call opener that stopped getting me hung up on",
				"Dropped the 'how are you today' and went straight to 'I know you were not expecting my call, can I have 30 seconds'. Connect-to-conversation rate doubled. Small sample size but sharing anyway.",
				756, 389, now.Add(-10*time.Hour), 0.95),
			comments: []reddit.Comment{
				comment("demc08", "1demo07", "enterprise_emma",
					"Permission-based openers work because they hand control back. Same reason the voicemail-then-email combo works.",
					267, now.Add(-9*time.Hour)),
			},
		},
		{
			post: post("1demo08", "SDRs", "comp_plan_victim",
				"Quota went up 40%, comp stayed flat. Is this normal now?",
				"Second year in the seat. Pipeline targets jumped from 10 to 14 opps a month, same OTE, and they cut the tooling budget so we are back to manual prospecting. Looking for a reality check before I start interviewing.",
				923, 501, now.Add(-22*time.Hour), 0.92),
			comments: []reddit.Comment{
				comment("demc09", "1demo08", "been_there_2x",
					"Normal-ish in this market, still worth interviewing. Your multiplier matters more than the quota number.",
					334, now.Add(-20*time.Hour)),
				comment("demc10", "1demo08", "manager_pov",
					"Ask what changed in the territory model. A 40% bump with no territory change is a silent layoff.",
					289, now.Add(-19*time.Hour)),
			},
		},
		{
			post: post("1demo09", "SDRs", "sequencer_shopper",
				"Outreach vs Salesloft vs the cheap alternatives: 2025 edition",
				"Our contract is up. The big two feel identical at this point and both keep raising prices. Has anyone run a real side-by-side with the newer cheap sequencers? Deliverability numbers especially.",
				412, 176, now.Add(-2*24*time.Hour), 0.9),
			comments: []reddit.Comment{
				comment("demc11", "1demo09", "deliverability_nerd",
					"The sequencer matters less than your domain setup. We moved down-market on tooling and deliverability went up after we fixed SPF.",
					188, now.Add(-46*time.Hour)),
			},
		},
		{
			post: post("1demo10", "SDRs", "eighteen_months_in",
				"Burned out after 18 months of dials. What helped you?",
				"150 dials a day, the CRM admin work on top, and a manager who screenshots the activity leaderboard into Slack every morning. I used to like this job. Looking for practical ways people pulled out of the spiral.",
				688, 356, now.Add(-3*24*time.Hour), 0.94),
		},
		{
			post: post("1demo11", "SDRs", "ai_curious_sdr",
				"AI SDR tools: hype or real? Honest experiences only",
				"Leadership wants to pilot an AI prospecting tool that writes first-touch emails. The demo looked spooky good. Anyone run one for a full quarter? What happened to reply rates and what happened to your job?",
				534, 298, now.Add(-4*24*time.Hour), 0.89),
			comments: []reddit.Comment{
				comment("demc12", "1demo11", "pilot_survivor",
					"Reply rates went up for a month, then the whole market got the same tool and everything sounds identical again.",
					245, now.Add(-94*time.Hour)),
			},
		},
		{
			post: post("1demo12", "SDRs", "notes_goblin",
				"My CRM hygiene system as an SDR (frustrating lessons learned)",
				"After losing two qualified opps to bad handoff notes I built a 5-minute end-of-day routine: dispositions first, then next steps, then one-line context per account. Sharing the template since the default CRM fields fight you the whole way.",
				377, 142, now.Add(-5*24*time.Hour), 0.96),
		},
	}
}

func post(id, subreddit, author, title, content string, score, numComments int, created time.Time, upvoteRatio float64) reddit.Post {
	return reddit.Post{
		ID:          id,
		Title:       title,
		Content:     content,
		Author:      author,
		Subreddit:   subreddit,
		Score:       score,
		NumComments: numComments,
		CreatedUTC:  created.UTC(),
		URL:         "https://www.reddit.com/r/" + subreddit + "/comments/" + id + "/",
		Permalink:   "https://reddit.com/r/" + subreddit + "/comments/" + id + "/",
		IsSelf:      true,
		UpvoteRatio: upvoteRatio,
	}
}

func comment(id, postID, author, body string, score int, created time.Time) reddit.Comment {
	return reddit.Comment{
		ID:         id,
		PostID:     postID,
		Author:     author,
		Body:       body,
		Score:      score,
		CreatedUTC: created.UTC(),
		ParentID:   "t3_" + postID,
	}
}
