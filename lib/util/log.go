package util

import "github.com/dpquoc/zerolaunch/lib/util/logger"

var log = logger.GetLogger()
