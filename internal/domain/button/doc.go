// Package button contains the core domain types of the async button.
//
// ActivityState and Config describe the coordinator, Signals is the
// projection of the loading flag consumed by views, and FetchState is the
// result of the demo fetch action together with the Actor who pressed the
// button. Clone helpers avoid leaking internal references across layers.
package button
