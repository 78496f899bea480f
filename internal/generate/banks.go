package generate

import "fmt"

// bank holds the per-channel fallback lines used when no LLM is configured
// or the provider call fails. Lines are ordered; selection takes the first
// entry whose signature has not been used recently, so fresh runs rotate
// through the bank as history accumulates.
type bank struct {
	hooks []string
	setup []string
	build []string
	fix   []string
	twist []string
	cta   []string
}

func channelBank(channel, topic string) bank {
	t := topic
	switch channel {
	case "tech":
		return bank{
			hooks: []string{
				fmt.Sprintf("What is the most costly mistake people make in %s?", t),
				fmt.Sprintf("Stop scrolling: one high-impact %s fix, right now.", t),
				fmt.Sprintf("Why does %s feel slow when everyone has the same tools?", t),
			},
			setup: []string{
				fmt.Sprintf("Teams keep adding features to %s, but the result never gets stable.", t),
				fmt.Sprintf("Everyone works hard on %s, yet the bottleneck stays invisible.", t),
				fmt.Sprintf("%s starts fast, then the performance dip arrives.", t),
			},
			build: []string{
				"The issue is rarely the tooling, it is the order of the process.",
				"Without clear data, even smart decisions look random.",
				"Skipping context in a hurry doubles the rework later.",
			},
			fix: []string{
				"Fix: lock one metric, then check every step against it.",
				"Fix: isolate the bottleneck first, optimize second.",
				"Fix: add a fifteen minute review loop and drift shows up instantly.",
			},
			twist: []string{
				"Twist: the best sequence beats the best tool.",
				"Twist: clarity before speed, always.",
				"Twist: a small process tweak gives the big performance win.",
			},
			cta: []string{
				"Found it useful? Save this and share it with your team.",
				"Follow for practical tech shorts like this one.",
				"Comment: which topic should the next short cover?",
			},
		}
	case "funny":
		return bank{
			hooks: []string{
				fmt.Sprintf("Wait... what is the funniest fail point in %s?", t),
				fmt.Sprintf("Hold on... the real comedy twist in %s.", t),
				fmt.Sprintf("Why do people repeat the same simple %s mistake?", t),
			},
			setup: []string{
				fmt.Sprintf("The scene: %s starts with full confidence.", t),
				fmt.Sprintf("In real life every %s plan looks strong on paper.", t),
				fmt.Sprintf("The first %s step looks easy, and that is the trap.", t),
			},
			build: []string{
				"Then one tiny miss, and the whole flow flips upside down.",
				"Everyone laughs, but deep down everyone has the same issue.",
				"The faster you go, the funnier the slip.",
			},
			fix: []string{
				"Fix: do a ten second check before the next move.",
				"Fix: one step at a time cuts the chaos in half.",
				"Fix: keep the sequence simple, skip the over-smart part.",
			},
			twist: []string{
				"Twist: the problem is timing, not skill.",
				"Twist: smart people trip on the same basic point.",
				"Twist: the shortcut looks cute and hurts the output.",
			},
			cta: []string{
				"Relatable? Drop your version in the comments.",
				"Send this to the friend who does exactly this.",
				"Save this short, test it tomorrow, comment the result.",
			},
		}
	case "facts":
		return bank{
			hooks: []string{
				fmt.Sprintf("The hidden truth about %s almost nobody shares.", t),
				fmt.Sprintf("What if one %s fact changes how you see it?", t),
				fmt.Sprintf("Why does %s work nothing like people assume?", t),
			},
			setup: []string{
				fmt.Sprintf("Most explanations of %s skip the part that matters.", t),
				fmt.Sprintf("%s looks simple from outside, and the pattern hides inside.", t),
			},
			build: []string{
				"Look at the numbers once and the story flips.",
				"The detail everyone skips is the one that decides the outcome.",
			},
			fix: []string{
				"Remember one rule: check the source before the conclusion.",
				"Keep the single fact, drop the noise around it.",
			},
			twist: []string{
				"Twist: the obvious answer is the wrong one here.",
				"Twist: the boring detail carries the whole story.",
			},
			cta: []string{
				"Save this fact and share it with someone who argues about it.",
				"Follow for one sharp fact a day.",
				"Comment which fact should get the next short.",
			},
		}
	}
	return bank{
		hooks: []string{
			fmt.Sprintf("What is the real game behind %s?", t),
			fmt.Sprintf("The hidden %s rule everyone ignores.", t),
			fmt.Sprintf("Why does %s reward the bold move at the wrong time?", t),
		},
		setup: []string{
			fmt.Sprintf("The %s scene looks simple, but the pressure is high.", t),
			fmt.Sprintf("In %s the first impression changes the direction of the game.", t),
			fmt.Sprintf("Understand the %s pattern and the decision gets easy.", t),
		},
		build: []string{
			"The balance between confidence and caution decides it here.",
			"In a hurry, people miss the one core signal.",
			"One wrong read and the whole mood changes.",
		},
		fix: []string{
			"Fix: observe first, act second.",
			"Fix: set one clear priority, then move.",
			"Fix: build momentum with one small win.",
		},
		twist: []string{
			"Twist: rhythm wins, force does not.",
			"Twist: the right move beats the loud move.",
			"Twist: where everyone rushes, the pause wins.",
		},
		cta: []string{
			"If that line hit, follow for the next one.",
			"Drop your take in the comments.",
			"Send this to the friend who gets this scene.",
		},
	}
}
