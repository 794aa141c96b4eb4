package tui

import "github.com/happy-v587/github-trending/internal/trending"

type reposLoadedMsg struct {
	result trending.Result
}

type openErrMsg struct {
	err error
}
