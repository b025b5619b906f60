package site

import (
	"context"

	"github.com/forexfactory/site/internal/models"
	"github.com/forexfactory/site/internal/modules/blog"
	"golang.org/x/sync/errgroup"
)

const (
	sectionRows = 3
	homeSignals = 6
)

type section struct {
	Title    string
	Subtitle string
	Filter   blog.Filter
}

func terms(t ...string) blog.Terms { return blog.Terms(t) }

// homeSections are the blog rows of the landing page, in display order.
var homeSections = []section{
	{"Popular Forex Articles", "Most read insights and strategies", blog.Filter{Popular: true}},
	{"Latest Market Updates", "Stay ahead with fresh market news", blog.Filter{}},
	{"EA-MT4 Articles", "Expert Advisors for MetaTrader 4", blog.Filter{All: []blog.Terms{terms("MT4")}}},
	{"EA-MT5 Articles", "Expert Advisors for MetaTrader 5", blog.Filter{All: []blog.Terms{terms("MT5")}}},
	{"Indicator - MT4 Articles", "Technical indicators for MetaTrader 4", blog.Filter{All: []blog.Terms{terms("Indicator"), terms("MT4")}}},
	{"Indicator - MT5 Articles", "Technical indicators for MetaTrader 5", blog.Filter{All: []blog.Terms{terms("Indicator"), terms("MT5")}}},
	{"Beginner Guides Articles", "Start your trading journey with step-by-step guides", blog.Filter{All: []blog.Terms{terms("Beginner", "Guide")}}},
	{"Indicator MT4 Articles", "MT4 technical indicators and analysis tools", blog.Filter{All: []blog.Terms{terms("Indicator"), terms("MT4")}, None: terms("MT5")}},
	{"Source Code MQ4 Articles", "MQ4 source code and programming guides", blog.Filter{All: []blog.Terms{terms("Source"), terms("MQ4")}}},
	{"Source Code MQ5 Articles", "MQ5 source code and programming guides", blog.Filter{All: []blog.Terms{terms("Source"), terms("MQ5")}}},
	{"Flexy Markets Articles", "Market analysis and Flexy trading strategies", blog.Filter{All: []blog.Terms{terms("Flexy")}}},
	{"EA - MT4/MT5 Articles", "Expert Advisors for both MetaTrader platforms", blog.Filter{All: []blog.Terms{terms("EA", "Expert Advisor")}}},
	{"Course Articles", "Educational courses and training materials", blog.Filter{All: []blog.Terms{terms("Course", "Training")}}},
	{"Indicator - MT4/MT5 Articles", "Indicators for every MetaTrader platform", blog.Filter{All: []blog.Terms{terms("Indicator"), terms("MT4", "MT5")}}},
	{"Copy Trading Articles", "Copy the strategies of proven traders", blog.Filter{All: []blog.Terms{terms("Copy", "Copy Trading")}}},
	{"Indicator MQ4 Articles", "MQ4 indicator source and setup", blog.Filter{All: []blog.Terms{terms("Indicator"), terms("MQ4")}}},
	{"Prop Firm Articles", "Passing prop firm challenges", blog.Filter{All: []blog.Terms{terms("PropFirm", "Prop Firm", "Passing")}}},
}

// HomeSection is one rendered row of the landing page.
type HomeSection struct {
	Title    string
	Subtitle string
	Blogs    []models.Blog
}

type homeData struct {
	Sections []HomeSection
	Signals  []models.Signal
}

// loadHome runs every section query and the signal query concurrently; the
// first failure cancels the rest. Empty sections are dropped.
func (h *Handler) loadHome(ctx context.Context) (*homeData, error) {
	rows := make([][]models.Blog, len(homeSections))
	var signals []models.Signal

	g, gctx := errgroup.WithContext(ctx)
	for i, s := range homeSections {
		i := i
		f := s.Filter
		f.Limit = sectionRows
		g.Go(func() error {
			blogs, err := h.blogs.Published(gctx, f)
			rows[i] = blogs
			return err
		})
	}
	g.Go(func() error {
		var err error
		signals, err = h.signals.Latest(gctx, homeSignals)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	data := &homeData{Signals: signals}
	for i, s := range homeSections {
		if len(rows[i]) == 0 {
			continue
		}
		data.Sections = append(data.Sections, HomeSection{Title: s.Title, Subtitle: s.Subtitle, Blogs: rows[i]})
	}
	return data, nil
}
