// Package common contains the ambient pieces shared by the library and the
// command line tool: the leveled logger (an implementation of dragonboat's
// logger.ILogger, installed as the logger factory) and the runtime Config.
package common
