package discovery

// Stage is a node of the discovery state machine.
type Stage int

const (
	StageStart Stage = iota
	StageRetrieval
	StageWebSearch
	StageGeneration
	StageMerge
	StageEnd
)

var stageNames = [...]string{
	StageStart:      "start",
	StageRetrieval:  "retrieval",
	StageWebSearch:  "web_search",
	StageGeneration: "generation",
	StageMerge:      "merge",
	StageEnd:        "end",
}

func (s Stage) String() string {
	if s < StageStart || s > StageEnd {
		return "unknown"
	}
	return stageNames[s]
}

// Next returns the stage that follows stage given the state it produced.
// Routing after a stage checks the error first, then the quotas.
func Next(stage Stage, st *State) Stage {
	switch stage {
	case StageStart:
		return StageRetrieval
	case StageRetrieval:
		switch {
		case st.Err != nil:
			return StageMerge
		case st.MissingWeb == 0 && st.MissingLLM == 0:
			return StageMerge
		case st.MissingWeb > 0:
			return StageWebSearch
		case st.MissingLLM > 0:
			return StageGeneration
		default:
			return StageMerge
		}
	case StageWebSearch:
		if st.Err == nil && st.MissingLLM > 0 {
			return StageGeneration
		}
		return StageMerge
	case StageGeneration:
		return StageMerge
	default:
		return StageEnd
	}
}

// splitQuota divides a shortfall between web search and generation.
// Generation takes the extra word when missing is odd.
func splitQuota(missing int) (web, llm int) {
	if missing <= 0 {
		return 0, 0
	}
	web = missing / 2
	return web, missing - web
}
