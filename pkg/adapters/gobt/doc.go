// Package gobt bridges stackbt and github.com/joeycumines/go-behaviortree.
//
// Import wraps a go-behaviortree node as a stackbt leaf, so existing
// closure-based trees can run under a stackbt driver. Export goes the other
// way and drives a stackbt node from a go-behaviortree ticker or manager.
package gobt
