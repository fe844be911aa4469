// Package git prepares the local clone a build runs against.
//
// A Session pairs a RemoteSpec (what to build) with the local directory the
// clone lives in. SetupBuild clones the repository when the directory does
// not hold one yet, fetches the requested ref and checks out the fetched
// commit, so the surrounding build system finds the tree in a known state.
//
// Key Components:
//
// RemoteSpec: the URL, remote name and ref a build wants.
//
// Session: owns the local directory for the duration of one build. Commands
// that reach the network (clone, fetch) go through a RemoteExecutor, which
// answers ssh host key prompts. Local commands (rev-parse, update-ref,
// checkout) go through a plain command.Executor.
//
// Example Usage:
//
//	cfg, err := config.Load("buildrepo.yaml", ".env")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	session, err := git.New(cfg, git.RemoteSpec{
//	    URL: "ssh://scm.example.com/box/www",
//	    Ref: "refs/changes/78/151978/27",
//	}, progress.NewConsoleTracker(os.Stderr))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	state, err := session.SetupBuild(ctx)
//
// Error Handling:
//
// Every step runs once. A nonzero exit status from any step stops the setup
// and is returned as an errors.CommandError carrying the captured output.
// Retrying a build is the caller's decision.
//
// Thread Safety:
//
// A Session is not safe for concurrent use, and no two sessions may target
// the same directory at once. Nothing here locks the directory; the
// scheduler must guarantee exclusive use.
package git
