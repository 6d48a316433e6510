// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"maps"
	"slices"

	"github.com/charmbracelet/glamour"
)

type Id int

const (
	UsageErrorId Id = iota + 1
	InvalidKeywordId
	InvalidWorkerCountId
	InvalidMaxDepthId
	UnknownStrategyId
	SearchRootUnreadableId
	ConfigLoadFailedId
	WatchFailedId
)

type MarkdownMsg string

type HttpLink string

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

// Render renders the issue as terminal Markdown using the given glamour
// style ("dark", "light", "notty", "auto").
func (i *Issue) Render(stylePath string) (string, error) {
	md := string(i.mdMsg)
	if len(i.docLinks) > 0 {
		md += "\n\n## See also\n"
		for _, link := range i.docLinks {
			md += "- <" + string(link) + ">\n"
		}
	}
	return render(md, stylePath)
}

var (
	render = glamour.Render

	usageErrorIssue = &Issue{
		id: UsageErrorId,
		mdMsg: `
# Missing arguments!

Both a root directory and a keyword are required.

## Usage
~~~
$ ksearch search <directory> <keyword> [--workers N]
$ ksearch scan <directory> <keyword> <max_depth>
~~~

Use -1 for <max_depth> to recurse without limit.`,
	}

	invalidKeywordIssue = &Issue{
		id: InvalidKeywordId,
		mdMsg: `
# Invalid keyword!

The keyword is matched literally against each line of every file, so it
must be non-empty and must not contain line breaks.

## Things you can try:
- Quote keywords that contain spaces: ` + "`ksearch search ./docs \"two words\"`" + `
- Search for each line of a multi-line phrase separately`,
	}

	invalidWorkerCountIssue = &Issue{
		id: InvalidWorkerCountId,
		mdMsg: `
# Invalid worker count!

The number of workers must be at least 1.

## Where the worker count comes from (in order of precedence):
1. The --workers flag
2. The KSEARCH_WORKERS environment variable
3. search.workers in your config file
4. The number of CPUs`,
	}

	invalidMaxDepthIssue = &Issue{
		id: InvalidMaxDepthId,
		mdMsg: `
# Invalid max depth!

<max_depth> must be -1 (unlimited) or a non-negative integer.
0 searches only the files directly inside the root directory.`,
	}

	unknownStrategyIssue = &Issue{
		id: UnknownStrategyId,
		mdMsg: `
# Unknown partition strategy!

## Available strategies:
- **contiguous**: equal contiguous shards, the last worker takes the remainder
- **balanced**: contiguous shards whose sizes differ by at most one file`,
	}

	searchRootUnreadableIssue = &Issue{
		id: SearchRootUnreadableId,
		mdMsg: `
# Search root could not be read!

The directory could not be listed, so no files were searched and the
total is 0.

## Things you can try:
- Check the path for typos
- Check that you have read and execute permission on the directory`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

ksearch fell back to its built-in defaults.

## Things you can try:
- Show the effective configuration:
~~~
$ ksearch config show
~~~
- Recreate a default config file:
~~~
$ ksearch config init
~~~`,
	}

	watchFailedIssue = &Issue{
		id: WatchFailedId,
		mdMsg: `
# Watch mode could not start!

## Things you can try:
- Raise the inotify watch limit (Linux):
~~~
$ sudo sysctl fs.inotify.max_user_watches=524288
~~~
- Exclude large generated trees with search.exclude in your config file`,
	}

	issues = map[Id]*Issue{
		usageErrorIssue.Id():           usageErrorIssue,
		invalidKeywordIssue.Id():       invalidKeywordIssue,
		invalidWorkerCountIssue.Id():   invalidWorkerCountIssue,
		invalidMaxDepthIssue.Id():      invalidMaxDepthIssue,
		unknownStrategyIssue.Id():      unknownStrategyIssue,
		searchRootUnreadableIssue.Id(): searchRootUnreadableIssue,
		configLoadFailedIssue.Id():     configLoadFailedIssue,
		watchFailedIssue.Id():          watchFailedIssue,
	}
)

// Values returns every catalogued issue ordered by Id.
func Values() []*Issue {
	out := slices.Collect(maps.Values(issues))
	slices.SortFunc(out, func(a, b *Issue) int { return int(a.id) - int(b.id) })
	return out
}

func Get(id Id) *Issue {
	return issues[id]
}
